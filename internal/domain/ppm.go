package domain

// PPMRecord is a machine under planned (quarterly) preventive maintenance.
type PPMRecord struct {
	ID string `json:"id"`
	MachineDescriptor
	Q1 MaintenanceSlot `json:"q1"`
	Q2 MaintenanceSlot `json:"q2"`
	Q3 MaintenanceSlot `json:"q3"`
	Q4 MaintenanceSlot `json:"q4"`
}

var _ Record[PPMRecord] = PPMRecord{}

// Identity implements Record.
func (r PPMRecord) Identity() string { return r.ID }

// WithIdentity returns a copy carrying id.
func (r PPMRecord) WithIdentity(id string) PPMRecord {
	r.ID = id
	return r
}

// NaturalKey implements Record.
func (r PPMRecord) NaturalKey() NaturalKey { return r.key() }

// Quarter returns the slot for q in 1..4; any other q yields a zero slot.
func (r PPMRecord) Quarter(q int) MaintenanceSlot {
	switch q {
	case 1:
		return r.Q1
	case 2:
		return r.Q2
	case 3:
		return r.Q3
	case 4:
		return r.Q4
	default:
		return MaintenanceSlot{}
	}
}

// SetQuarter assigns the slot for q in 1..4.
func (r *PPMRecord) SetQuarter(q int, slot MaintenanceSlot) {
	switch q {
	case 1:
		r.Q1 = slot
	case 2:
		r.Q2 = slot
	case 3:
		r.Q3 = slot
	case 4:
		r.Q4 = slot
	}
}

// Flatten implements Record.
func (r PPMRecord) Flatten() map[string]any {
	out := make(map[string]any, len(PPMHeaders))
	r.flattenInto(out)
	for q := 1; q <= 4; q++ {
		dateHeader, engineerHeader := QuarterHeaders(q)
		slot := r.Quarter(q)
		out[dateHeader] = slot.Date
		out[engineerHeader] = slot.Engineer
	}
	return out
}
