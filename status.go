package replicate

// Status is the lifecycle state of a prediction or training, as reported
// by the API. The client never transitions a status locally.
type Status string

const (
	Starting   Status = "starting"
	Processing Status = "processing"
	Succeeded  Status = "succeeded"
	Failed     Status = "failed"
	Canceled   Status = "canceled"
)

func (s Status) String() string {
	return string(s)
}

// Terminated reports whether the status is terminal.
func (s Status) Terminated() bool {
	return s == Succeeded || s == Failed || s == Canceled
}
