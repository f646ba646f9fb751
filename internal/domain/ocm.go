package domain

// OCMRecord is a machine under annual (on-condition) maintenance.
type OCMRecord struct {
	ID string `json:"id"`
	MachineDescriptor
	LastMaintenanceDate string `json:"lastMaintenanceDate"`
	NextMaintenanceDate string `json:"nextMaintenanceDate"`
	Engineer            string `json:"engineer"`
}

var _ Record[OCMRecord] = OCMRecord{}

// Identity implements Record.
func (r OCMRecord) Identity() string { return r.ID }

// WithIdentity returns a copy carrying id.
func (r OCMRecord) WithIdentity(id string) OCMRecord {
	r.ID = id
	return r
}

// NaturalKey implements Record.
func (r OCMRecord) NaturalKey() NaturalKey { return r.key() }

// Flatten implements Record.
func (r OCMRecord) Flatten() map[string]any {
	out := make(map[string]any, len(OCMHeaders))
	r.flattenInto(out)
	out[HeaderLastMaintenance] = r.LastMaintenanceDate
	out[HeaderNextMaintenance] = r.NextMaintenanceDate
	out[HeaderEngineer] = r.Engineer
	return out
}
