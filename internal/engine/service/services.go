package service

import (
	"github.com/go-arcade/agileboard/internal/engine/metrics"
	"github.com/go-arcade/agileboard/internal/engine/repo"
	"github.com/go-arcade/agileboard/internal/pkg/identity"
	"github.com/go-arcade/agileboard/pkg/event"
)

// Services 统一管理所有 service
type Services struct {
	Catalog       *Catalog
	Members       *MembershipResolver
	Guard         *AccessGuard
	Lifecycle     *ProjectLifecycle
	Notifications *NotificationService
	Identity      *IdentityService
	Users         *UserService
	Project       *ProjectService
	Board         *BoardService
	Milestone     *MilestoneService
	Sprint        *SprintService
	Activity      *ActivityService
}

// NewServices 初始化所有 service
func NewServices(
	repos *repo.Repositories,
	provider identity.Provider,
	identityConf identity.Conf,
	bus *event.EventBus,
	observer *metrics.Collectors,
) *Services {
	catalog := NewCatalog()
	members := NewMembershipResolver(repos)
	guard := NewAccessGuard(repos, catalog, members, observer)
	notifications := NewNotificationService(repos, bus, observer)

	return &Services{
		Catalog:       catalog,
		Members:       members,
		Guard:         guard,
		Lifecycle:     NewProjectLifecycle(repos, guard, notifications, observer),
		Notifications: notifications,
		Identity:      NewIdentityService(repos, provider, catalog, identityConf),
		Users:         NewUserService(repos),
		Project:       NewProjectService(repos, guard),
		Board:         NewBoardService(repos, guard, catalog, members, notifications),
		Milestone:     NewMilestoneService(repos, guard),
		Sprint:        NewSprintService(repos, guard),
		Activity:      NewActivityService(repos, guard),
	}
}
