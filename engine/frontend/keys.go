package frontend

// Button and key codes passed to Midend.ProcessKey. Printable keys are
// passed as their character value; the codes below sit above the
// character range.
const (
	LeftButton = 0x0200 + iota
	MiddleButton
	RightButton
	LeftDrag
	MiddleDrag
	RightDrag
	LeftRelease
	MiddleRelease
	RightRelease
	CursorUp
	CursorDown
	CursorLeft
	CursorRight
	CursorSelect
	CursorSelect2
)

// IsMouse reports whether a ProcessKey code is a mouse event, meaning
// its coordinates are meaningful.
func IsMouse(button int) bool {
	return button >= LeftButton && button <= RightRelease
}
