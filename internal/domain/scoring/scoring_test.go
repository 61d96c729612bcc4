package scoring_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/model"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/registry"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/scoring"
)

// responsesWithValue renders one response per registry item, all carrying
// the same Likert value.
func responsesWithValue(reg *registry.Registry, value int) []model.Response {
	items := reg.Items()
	out := make([]model.Response, 0, len(items))
	for _, item := range items {
		out = append(out, model.Response{Item: item, Value: value})
	}
	return out
}

func TestAggregate(t *testing.T) {
	Convey("Given the full instrument", t, func() {
		reg, err := registry.New()
		So(err, ShouldBeNil)

		Convey("When every item scores 3", func() {
			scores := scoring.Aggregate(responsesWithValue(reg, 3))

			Convey("Then all 18 schemas should land on index 40", func() {
				So(scores, ShouldHaveLength, 18)
				for _, s := range scores {
					So(s.RawMean, ShouldEqual, 3.0)
					So(s.Index, ShouldEqual, 40.0)
					So(s.ItemCount, ShouldEqual, 6)
				}
			})
		})

		Convey("When every item scores the floor", func() {
			scores := scoring.Aggregate(responsesWithValue(reg, model.MinValue))
			for _, s := range scores {
				So(s.Index, ShouldEqual, 0.0)
			}
		})

		Convey("When every item scores the ceiling", func() {
			scores := scoring.Aggregate(responsesWithValue(reg, model.MaxValue))
			for _, s := range scores {
				So(s.Index, ShouldEqual, 100.0)
			}
		})

		Convey("When a schema's values average to 3.5", func() {
			items := reg.Items()
			schema := items[0].Schema
			responses := make([]model.Response, 0, 6)
			value := 3
			for _, item := range items {
				if item.Schema != schema {
					continue
				}
				responses = append(responses, model.Response{Item: item, Value: value})
				value = 7 - value // alternate 3 and 4
			}

			scores := scoring.Aggregate(responses)

			Convey("Then the midpoint mean should map to index 50", func() {
				So(scores, ShouldHaveLength, 1)
				So(scores[0].RawMean, ShouldEqual, 3.5)
				So(scores[0].Index, ShouldEqual, 50.0)
			})
		})

		Convey("When only some schemas have responses", func() {
			items := reg.Items()
			responses := []model.Response{
				{Item: items[0], Value: 2},
				{Item: items[1], Value: 4},
			}
			scores := scoring.Aggregate(responses)

			Convey("Then absent schemas should be omitted, not zero-filled", func() {
				So(scores, ShouldHaveLength, 1)
				So(scores[0].Schema, ShouldEqual, items[0].Schema)
				So(scores[0].ItemCount, ShouldEqual, 2)
				So(scores[0].RawMean, ShouldEqual, 3.0)
			})
		})

		Convey("When schemas appear in a given input order", func() {
			items := reg.Items()
			// Take one item from the last schema first, then one from the first.
			last := items[len(items)-1]
			first := items[0]
			scores := scoring.Aggregate([]model.Response{
				{Item: last, Value: 3},
				{Item: first, Value: 3},
			})

			Convey("Then output should preserve first-appearance order", func() {
				So(scores, ShouldHaveLength, 2)
				So(scores[0].Schema, ShouldEqual, last.Schema)
				So(scores[1].Schema, ShouldEqual, first.Schema)
			})
		})

		Convey("When the input is empty", func() {
			So(scoring.Aggregate(nil), ShouldBeEmpty)
		})
	})
}

func TestIndexFromMean(t *testing.T) {
	Convey("Given the mean-to-index rescaling", t, func() {
		Convey("Then the anchor points should round-trip exactly", func() {
			So(scoring.IndexFromMean(1.0), ShouldEqual, 0.0)
			So(scoring.IndexFromMean(3.5), ShouldEqual, 50.0)
			So(scoring.IndexFromMean(6.0), ShouldEqual, 100.0)
		})

		Convey("Then out-of-range means should clamp", func() {
			So(scoring.IndexFromMean(0.5), ShouldEqual, 0.0)
			So(scoring.IndexFromMean(6.5), ShouldEqual, 100.0)
		})
	})
}
