package domain

// MachineTraining records whether an employee is trained on one machine.
type MachineTraining struct {
	Name    string `json:"name"`
	Trained bool   `json:"trained"`
}

// TrainingRecord is one employee with the machines they are trained on. The
// machine list is schema-on-read: it mirrors whatever extra columns the
// imported sheet carried.
type TrainingRecord struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	EmployeeID string            `json:"employeeId"`
	Department string            `json:"department"`
	Trainer    string            `json:"trainer"`
	Machines   []MachineTraining `json:"machines"`
}

var _ Record[TrainingRecord] = TrainingRecord{}

// Identity implements Record.
func (r TrainingRecord) Identity() string { return r.ID }

// WithIdentity returns a copy carrying id.
func (r TrainingRecord) WithIdentity(id string) TrainingRecord {
	r.ID = id
	return r
}

// NaturalKey implements Record.
func (r TrainingRecord) NaturalKey() NaturalKey {
	return NaturalKey{First: r.Name, Second: r.EmployeeID}
}

// IsTrained reports the trained flag for machine; unknown machines are untrained.
func (r TrainingRecord) IsTrained(machine string) bool {
	for _, m := range r.Machines {
		if m.Name == machine {
			return m.Trained
		}
	}
	return false
}

// Flatten implements Record. Machine columns hold "Yes"/"No" so an exported
// sheet re-imports with the same flags.
func (r TrainingRecord) Flatten() map[string]any {
	out := make(map[string]any, len(TrainingHeaders)+len(r.Machines))
	out[HeaderName] = r.Name
	out[HeaderEmployeeID] = r.EmployeeID
	out[HeaderDepartment] = r.Department
	out[HeaderTrainer] = r.Trainer
	for _, m := range r.Machines {
		if m.Trained {
			out[m.Name] = "Yes"
		} else {
			out[m.Name] = "No"
		}
	}
	return out
}

// MachineColumns returns the union of machine names across records in order
// of first appearance.
func MachineColumns(records []TrainingRecord) []string {
	seen := make(map[string]struct{})
	var columns []string
	for _, record := range records {
		for _, m := range record.Machines {
			if _, ok := seen[m.Name]; ok {
				continue
			}
			seen[m.Name] = struct{}{}
			columns = append(columns, m.Name)
		}
	}
	return columns
}
