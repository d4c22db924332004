package request

type ListNotificationsRequest struct {
	Page       int
	Limit      int
	UnreadOnly bool
}
