package export_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/model"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/ranking"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/registry"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/scoring"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/export"
)

func fullResponses(reg *registry.Registry, value int) []model.Response {
	items := reg.Items()
	out := make([]model.Response, 0, len(items))
	for _, item := range items {
		out = append(out, model.Response{Item: item, Value: value})
	}
	return out
}

func testParticipant() model.Participant {
	return model.Participant{
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		AssessmentID: "assess-1",
		CompletedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuilder_Build(t *testing.T) {
	Convey("Given a builder over the full instrument", t, func() {
		reg, err := registry.New()
		So(err, ShouldBeNil)

		fixed := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
		b := export.NewBuilder(reg, export.WithClock(func() time.Time { return fixed }))

		r := ranking.New()
		responses := fullResponses(reg, 3)
		ranked := r.Rank(scoring.Aggregate(responses))

		Convey("When building from a complete scored assessment", func() {
			doc, err := b.Build(testParticipant(), ranked, responses)

			Convey("Then the document should carry the version envelope", func() {
				So(err, ShouldBeNil)
				So(doc.SchemaVersion, ShouldEqual, "1.3.0")
				So(doc.AnalysisVersion, ShouldEqual, "2.1.0")
				So(doc.MappingVersion, ShouldEqual, reg.Version())
				So(doc.InstrumentForm, ShouldEqual, "full")
				So(doc.GeneratedAt.Equal(fixed), ShouldBeTrue)
			})

			Convey("And every response should appear exactly once", func() {
				So(err, ShouldBeNil)
				So(doc.Responses, ShouldHaveLength, 108)
				seen := map[string]bool{}
				for _, rec := range doc.Responses {
					So(seen[rec.ItemID], ShouldBeFalse)
					seen[rec.ItemID] = true
					So(rec.DisplayIndex, ShouldBeGreaterThanOrEqualTo, 1)
				}
			})

			Convey("And personas should carry consecutive ranks", func() {
				So(err, ShouldBeNil)
				So(doc.Personas, ShouldHaveLength, 18)
				for i, p := range doc.Personas {
					So(p.Rank, ShouldEqual, i+1)
				}
			})
		})

		Convey("When the participant block is incomplete", func() {
			_, err := b.Build(model.Participant{AssessmentID: "assess-2"}, ranked, responses)

			Convey("Then the build should fail validation", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "participant.name")
				So(err.Error(), ShouldContainSubstring, "participant.email")
			})
		})

		Convey("When responses are missing", func() {
			_, err := b.Build(testParticipant(), ranked, responses[:10])

			Convey("Then the count rule should reject the document", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "expected 108 responses")
			})
		})
	})
}

func TestBuilder_Validate(t *testing.T) {
	Convey("Given a builder and a well-formed document", t, func() {
		reg, err := registry.New()
		So(err, ShouldBeNil)
		b := export.NewBuilder(reg)
		r := ranking.New()
		responses := fullResponses(reg, 4)
		ranked := r.Rank(scoring.Aggregate(responses))
		doc, err := b.Build(testParticipant(), ranked, responses)
		So(err, ShouldBeNil)

		Convey("When validating the document unchanged", func() {
			res := b.Validate(doc)
			So(res.OK, ShouldBeTrue)
			So(res.Issues, ShouldBeEmpty)
			So(res.Err(), ShouldBeNil)
		})

		Convey("When an unknown schema version sneaks in", func() {
			doc.SchemaVersion = "9.9.9"
			res := b.Validate(doc)
			So(res.OK, ShouldBeFalse)
			So(res.Err().Error(), ShouldContainSubstring, "unknown")
		})

		Convey("When the document claims the legacy version", func() {
			doc.SchemaVersion = export.LegacySchemaVersion

			Convey("Then a partial response set is acceptable", func() {
				doc.Responses = doc.Responses[:5]
				res := b.Validate(doc)
				So(res.OK, ShouldBeTrue)
			})

			Convey("But an empty response set is not", func() {
				doc.Responses = nil
				res := b.Validate(doc)
				So(res.OK, ShouldBeFalse)
				So(res.Err().Error(), ShouldContainSubstring, "no responses")
			})
		})

		Convey("When a response is duplicated", func() {
			doc.Responses[1] = doc.Responses[0]
			res := b.Validate(doc)
			So(res.OK, ShouldBeFalse)
			So(res.Err().Error(), ShouldContainSubstring, "duplicate of responses[0]")
		})

		Convey("When a value drifts out of range", func() {
			doc.Responses[0].Value = 7
			res := b.Validate(doc)
			So(res.OK, ShouldBeFalse)
			So(res.Err().Error(), ShouldContainSubstring, "outside range")
		})

		Convey("When persona ranks are out of sequence", func() {
			doc.Personas[0].Rank = 5
			res := b.Validate(doc)
			So(res.OK, ShouldBeFalse)
			So(res.Err().Error(), ShouldContainSubstring, "expected rank 1")
		})

		Convey("When several problems coexist", func() {
			doc.Responses[0].Value = 0
			doc.Responses[2].ItemID = ""
			doc.Participant.Email = ""
			res := b.Validate(doc)

			Convey("Then every issue should be collected, not just the first", func() {
				So(res.OK, ShouldBeFalse)
				So(len(res.Issues), ShouldBeGreaterThanOrEqualTo, 3)
			})
		})
	})
}

func TestBuilder_ShortForm(t *testing.T) {
	Convey("Given a builder over the short form", t, func() {
		reg, err := registry.New(registry.WithForm(registry.FormShort))
		So(err, ShouldBeNil)
		b := export.NewBuilder(reg)
		r := ranking.New()
		responses := fullResponses(reg, 5)
		ranked := r.Rank(scoring.Aggregate(responses))

		Convey("When building from a complete short submission", func() {
			doc, err := b.Build(testParticipant(), ranked, responses)

			Convey("Then the form and its 54-item count should hold", func() {
				So(err, ShouldBeNil)
				So(doc.InstrumentForm, ShouldEqual, "short")
				So(doc.Responses, ShouldHaveLength, 54)
			})
		})
	})
}
