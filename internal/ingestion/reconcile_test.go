package ingestion

import (
	"errors"
	"testing"

	"github.com/rpattn/engtrack/internal/domain"

	. "github.com/smartystreets/goconvey/convey"
)

func ppm(id, equipment, serial, model string) domain.PPMRecord {
	return domain.PPMRecord{
		ID: id,
		MachineDescriptor: domain.MachineDescriptor{
			Equipment:    equipment,
			SerialNumber: serial,
			Model:        model,
		},
	}
}

func TestMerge(t *testing.T) {
	Convey("Given an empty collection", t, func() {
		batch := []domain.PPMRecord{
			ppm("n1", "Pump", "SN1", "A"),
			ppm("n2", "Monitor", "SN2", "B"),
		}

		Convey("When the same batch is merged twice", func() {
			first, stats := Merge(nil, batch)
			So(stats, ShouldResemble, MergeStats{Created: 2})

			again := []domain.PPMRecord{
				ppm("fresh-1", "Pump", "SN1", "A"),
				ppm("fresh-2", "Monitor", "SN2", "B"),
			}
			second, stats := Merge(first, again)

			Convey("The collection size is unchanged and identities survive", func() {
				So(stats, ShouldResemble, MergeStats{Updated: 2})
				So(len(second), ShouldEqual, len(first))
				So(second[0].ID, ShouldEqual, "n1")
				So(second[1].ID, ShouldEqual, "n2")
			})
		})

		Convey("When a batch repeats a key", func() {
			dupes := []domain.PPMRecord{
				ppm("n1", "Pump", "SN1", "old"),
				ppm("n2", "Pump", "SN1", "new"),
			}
			merged, stats := Merge(nil, dupes)

			Convey("The later row wins and keeps the first identity", func() {
				So(len(merged), ShouldEqual, 1)
				So(merged[0].Model, ShouldEqual, "new")
				So(merged[0].ID, ShouldEqual, "n1")
				So(stats, ShouldResemble, MergeStats{Created: 1, Updated: 1})
			})
		})
	})

	Convey("Given stored records", t, func() {
		existing := []domain.PPMRecord{
			ppm("keep", "Pump", "SN1", "A"),
			ppm("other", "Monitor", "SN2", "B"),
		}

		Convey("When an incoming record matches a stored key", func() {
			merged, _ := Merge(existing, []domain.PPMRecord{
				ppm("fresh", "Pump", "SN1", "A2"),
				ppm("new", "Scanner", "SN3", "C"),
			})

			Convey("It replaces in place, inherits the id and appends the rest", func() {
				So(len(merged), ShouldEqual, 3)
				So(merged[0].ID, ShouldEqual, "keep")
				So(merged[0].Model, ShouldEqual, "A2")
				So(merged[2].ID, ShouldEqual, "new")
			})

			Convey("The stored slice is not modified", func() {
				So(existing[0].Model, ShouldEqual, "A")
				So(len(existing), ShouldEqual, 2)
			})
		})

		Convey("When the key differs only in serial number", func() {
			merged, stats := Merge(existing, []domain.PPMRecord{ppm("x", "Pump", "SN9", "A")})

			Convey("It is a new record", func() {
				So(stats.Created, ShouldEqual, 1)
				So(len(merged), ShouldEqual, 3)
			})
		})
	})
}

func TestCheckDuplicates(t *testing.T) {
	Convey("Given the strict duplicate policy", t, func() {
		existing := []domain.TrainingRecord{{ID: "1", Name: "Sara", EmployeeID: "E1"}}

		Convey("A clean batch passes", func() {
			err := CheckDuplicates(domain.KindTraining, existing, []domain.TrainingRecord{
				{Name: "Omar", EmployeeID: "E2"},
			})
			So(err, ShouldBeNil)
		})

		Convey("Repeated and stored keys are each reported once", func() {
			err := CheckDuplicates(domain.KindTraining, existing, []domain.TrainingRecord{
				{Name: "Omar", EmployeeID: "E2"},
				{Name: "Omar", EmployeeID: "E2"},
				{Name: "Omar", EmployeeID: "E2"},
				{Name: "Sara", EmployeeID: "E1"},
				{Name: "Sara", EmployeeID: "E1"},
			})

			var dup *domain.DuplicateKeyError
			So(errors.As(err, &dup), ShouldBeTrue)
			So(dup.InBatch, ShouldResemble, []domain.NaturalKey{
				{First: "Omar", Second: "E2"},
				{First: "Sara", Second: "E1"},
			})
			So(dup.Existing, ShouldResemble, []domain.NaturalKey{{First: "Sara", Second: "E1"}})
			So(err.Error(), ShouldContainSubstring, "Omar / E2")
		})
	})
}

func TestParseDuplicatePolicy(t *testing.T) {
	Convey("Policies parse case-insensitively with merge as default", t, func() {
		policy, err := ParseDuplicatePolicy("")
		So(err, ShouldBeNil)
		So(policy, ShouldEqual, DuplicatePolicyMerge)

		policy, err = ParseDuplicatePolicy(" STRICT ")
		So(err, ShouldBeNil)
		So(policy, ShouldEqual, DuplicatePolicyStrict)

		_, err = ParseDuplicatePolicy("reject")
		So(err, ShouldNotBeNil)
	})
}
