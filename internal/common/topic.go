package common

const (
	TopicXPAwarded         = "xp_awarded"
	TopicRotationCompleted = "rotation_completed"
)
