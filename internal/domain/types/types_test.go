package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPersonaEntry(t *testing.T) {
	Convey("Given a PersonaEntry struct", t, func() {
		Convey("When creating a new entry", func() {
			entry := types.PersonaEntry{
				Rank:     1,
				Schema:   "Abandonment",
				Index:    72.5,
				Emerging: false,
			}

			Convey("Then it should have the correct values", func() {
				So(entry.Rank, ShouldEqual, 1)
				So(entry.Schema, ShouldEqual, "Abandonment")
				So(entry.Index, ShouldEqual, 72.5)
				So(entry.Emerging, ShouldBeFalse)
			})
		})

		Convey("When creating an entry with zero values", func() {
			entry := types.PersonaEntry{}

			Convey("Then it should have default values", func() {
				So(entry.Rank, ShouldEqual, 0)
				So(entry.Schema, ShouldEqual, "")
				So(entry.Index, ShouldEqual, 0.0)
				So(entry.Emerging, ShouldBeFalse)
			})
		})

		Convey("When marshaling an entry", func() {
			entry := types.PersonaEntry{Rank: 2, Schema: "Mistrust", Index: 55.0, Emerging: true}
			data, err := json.Marshal(entry)

			Convey("Then it should use the wire field names", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, `"rank":2`)
				So(string(data), ShouldContainSubstring, `"schema":"Mistrust"`)
				So(string(data), ShouldContainSubstring, `"emerging":true`)
			})
		})
	})
}

func TestProfile(t *testing.T) {
	Convey("Given a Profile struct", t, func() {
		Convey("When creating a full profile", func() {
			primary := types.PersonaEntry{Rank: 1, Schema: "Abandonment", Index: 80}
			secondary := types.PersonaEntry{Rank: 2, Schema: "Mistrust", Index: 65}
			profile := types.Profile{
				AssessmentID: "asm-001",
				Primary:      &primary,
				Secondary:    &secondary,
				Personas:     []types.PersonaEntry{primary, secondary},
			}

			Convey("Then it should have the correct values", func() {
				So(profile.AssessmentID, ShouldEqual, "asm-001")
				So(profile.Primary, ShouldNotBeNil)
				So(profile.Primary.Schema, ShouldEqual, "Abandonment")
				So(profile.Secondary.Rank, ShouldEqual, 2)
				So(profile.Tertiary, ShouldBeNil)
				So(len(profile.Personas), ShouldEqual, 2)
			})
		})

		Convey("When marshaling a profile with empty slots", func() {
			profile := types.Profile{AssessmentID: "asm-002"}
			data, err := json.Marshal(profile)

			Convey("Then empty slots should serialize as null", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, `"assessment_id":"asm-002"`)
				So(string(data), ShouldContainSubstring, `"primary":null`)
				So(string(data), ShouldContainSubstring, `"tertiary":null`)
			})
		})
	})
}
