package cell

// Status is the validity label assigned to a cell by structural checks.
type Status int

const (
	StatusNormal Status = iota
	StatusConfused
	StatusAbnormal
)

func (s Status) String() string {
	switch s {
	case StatusNormal:
		return "Normal"
	case StatusConfused:
		return "Confused"
	case StatusAbnormal:
		return "Abnormal"
	default:
		return "Unknown"
	}
}
