// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"errors"
	"strconv"

	"github.com/go-arcade/agileboard/internal/engine/core"
	"github.com/go-arcade/agileboard/pkg/http"
	"github.com/go-arcade/agileboard/pkg/http/middleware"
	"github.com/go-arcade/agileboard/pkg/log"
	"github.com/gofiber/fiber/v2"
)

type errorMapping struct {
	status int
	rep    *http.Response
}

var errorMappings = map[core.Code]errorMapping{
	core.CodeAuthenticationFailure: {fiber.StatusUnauthorized, http.AuthenticationFailed},
	core.CodeNotAMember:            {fiber.StatusForbidden, http.NotAMember},
	core.CodeInsufficientRole:      {fiber.StatusForbidden, http.PermissionDenied},
	core.CodeUserNotFound:          {fiber.StatusNotFound, http.UserNotExist},
	core.CodeResourceNotFound:      {fiber.StatusNotFound, http.NotFound},
	core.CodeInvalidTransition:     {fiber.StatusBadRequest, http.InvalidTransition},
	core.CodeActiveSprintsExist:    {fiber.StatusBadRequest, http.ActiveSprintsExist},
	core.CodeProjectNotActionable:  {fiber.StatusBadRequest, http.ProjectNotActionable},
	core.CodeInvalidArgument:       {fiber.StatusBadRequest, http.BadRequest},
	core.CodeStorageFailure:        {fiber.StatusInternalServerError, http.InternalError},
}

// fail writes err as the error body. Anything that is not a domain error
// is reported as an internal failure without its text.
func fail(c *fiber.Ctx, err error) error {
	var de *core.Error
	if !errors.As(err, &de) {
		de = &core.Error{Code: core.CodeStorageFailure, Err: err}
	}
	m, ok := errorMappings[de.Code]
	if !ok {
		m = errorMappings[core.CodeStorageFailure]
	}

	msg := de.Message
	if m.status >= fiber.StatusInternalServerError {
		log.Ctx(c.UserContext()).Errorw("request failed", "path", c.Path(), "method", c.Method(), "requestId", middleware.RequestID(c), "error", err)
		msg = m.rep.Msg
	} else if msg == "" {
		msg = m.rep.Msg
	}
	return http.WithRepErrStatus(c, m.status, m.rep.Code, msg, string(de.Code))
}

func bind(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return core.InvalidArgument("invalid request body: " + err.Error())
	}
	return nil
}

func queryLimit(c *fiber.Ctx) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return n
}
