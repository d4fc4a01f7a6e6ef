package push

// Message is one push send, fanned out to every active token of the target
// user. A nil Badge leaves the OS badge untouched; a non-nil Badge is a full
// overwrite of the badge value (never an increment).
type Message struct {
	Title    string
	Body     string
	Data     map[string]string
	Priority string
	Channel  string
	Badge    *int
	Silent   bool
}

func (m Message) sound() string {
	if m.Silent {
		return ""
	}
	return "default"
}
