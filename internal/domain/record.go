package domain

import "strings"

// NaturalKey is the composite key deciding whether an imported record is the
// same as a stored one: (equipment, serial number) for machines and
// (name, employee id) for trainings.
type NaturalKey struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// String renders the key for error messages.
func (k NaturalKey) String() string {
	return k.First + " / " + k.Second
}

// Record is implemented by every domain record type. T is the concrete type
// so that WithIdentity can return a value without type assertions.
type Record[T any] interface {
	Identity() string
	WithIdentity(id string) T
	NaturalKey() NaturalKey
	// Flatten returns the record as export cells keyed by header.
	Flatten() map[string]any
}

// MachineDescriptor holds the equipment fields shared by PPM and OCM records.
type MachineDescriptor struct {
	Equipment    string `json:"equipment"`
	Model        string `json:"model"`
	SerialNumber string `json:"serialNumber"`
	Manufacturer string `json:"manufacturer"`
	LogNo        string `json:"logNo"`
	Department   string `json:"department"`
	Type         string `json:"type"`
}

func (m MachineDescriptor) key() NaturalKey {
	return NaturalKey{First: m.Equipment, Second: m.SerialNumber}
}

func (m MachineDescriptor) flattenInto(out map[string]any) {
	out[HeaderEquipment] = m.Equipment
	out[HeaderModel] = m.Model
	out[HeaderSerialNumber] = m.SerialNumber
	out[HeaderManufacturer] = m.Manufacturer
	out[HeaderLogNo] = m.LogNo
	out[HeaderDepartment] = m.Department
	out[HeaderType] = m.Type
}

// MaintenanceSlot is one maintenance date with the responsible engineer.
// Date is an ISO-8601 timestamp or empty.
type MaintenanceSlot struct {
	Date     string `json:"date"`
	Engineer string `json:"engineer"`
}

// IsZero reports whether neither field is set.
func (s MaintenanceSlot) IsZero() bool {
	return strings.TrimSpace(s.Date) == "" && strings.TrimSpace(s.Engineer) == ""
}
