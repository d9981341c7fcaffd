package domain

// Banner holds at most one of an error or a success message.
type Banner struct {
	Error   string
	Success string
}

func (b Banner) Empty() bool {
	return b.Error == "" && b.Success == ""
}
