package consts

// fiber locals
const (
	// DETAIL carries the payload the unified response wraps, e.g. c.Locals(DETAIL, value)
	DETAIL = "detail"
	// OPERATION marks a write with no payload, e.g. c.Locals(OPERATION, "")
	OPERATION = "operation"

	// CurrentUser holds the service.CurrentUser resolved by the auth middleware
	CurrentUser = "currentUser"
	// RequestID is set by the request middleware
	RequestID = "request_id"
)

// activity log types
const (
	ActivityProjectCreated        = "project_created"
	ActivityProjectUpdated        = "project_updated"
	ActivityProjectStarted        = "project_started"
	ActivityProjectPaused         = "project_paused"
	ActivityProjectResumed        = "project_resumed"
	ActivityProjectCompleted      = "project_completed"
	ActivityProjectCancelled      = "project_cancelled"
	ActivityProjectArchived       = "project_archived"
	ActivityProjectMarkedObsolete = "project_marked_obsolete"
	ActivityDatesUpdated          = "dates_updated"
	ActivityProjectDeleted        = "project_deleted"
	ActivityBoardCreated          = "board_created"
	ActivityCardDeleted           = "card_deleted"
	ActivityMemberAdded           = "member_added"
	ActivityMemberRemoved         = "member_removed"
	ActivityMilestoneCreated      = "milestone_created"
	ActivityMilestoneCompleted    = "milestone_completed"
	ActivitySprintCreated         = "sprint_created"
	ActivitySprintStarted         = "sprint_started"
	ActivitySprintCompleted       = "sprint_completed"
)

// notification types
const (
	NotificationCardAssigned    = "card_assigned"
	NotificationCardComment     = "card_comment"
	NotificationProjectObsolete = "project_obsolete"
)

// EventNotificationCreated is published on the event bus after a
// transaction that wrote notification rows commits.
const EventNotificationCreated = "notification.created"
