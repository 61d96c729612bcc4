package ranking_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/ranking"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/scoring"
)

func scoresOf(pairs ...any) []scoring.SchemaScore {
	out := make([]scoring.SchemaScore, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, scoring.SchemaScore{
			Schema: pairs[i].(string),
			Index:  pairs[i+1].(float64),
		})
	}
	return out
}

func TestRanker_Rank(t *testing.T) {
	Convey("Given a ranker with the default threshold", t, func() {
		r := ranking.New()

		Convey("When ranking distinct indexes", func() {
			ranked := r.Rank(scoresOf("Abandonment", 40.0, "Mistrust/Abuse", 80.0, "Failure", 60.0))

			Convey("Then order should be descending with 1-based ranks", func() {
				So(ranked, ShouldHaveLength, 3)
				So(ranked[0].Schema, ShouldEqual, "Mistrust/Abuse")
				So(ranked[0].Rank, ShouldEqual, 1)
				So(ranked[1].Schema, ShouldEqual, "Failure")
				So(ranked[1].Rank, ShouldEqual, 2)
				So(ranked[2].Schema, ShouldEqual, "Abandonment")
				So(ranked[2].Rank, ShouldEqual, 3)
			})
		})

		Convey("When indexes tie", func() {
			ranked := r.Rank(scoresOf("Subjugation", 55.0, "Self-Sacrifice", 55.0, "Punitiveness", 55.0))

			Convey("Then ties should keep their input order", func() {
				So(ranked[0].Schema, ShouldEqual, "Subjugation")
				So(ranked[1].Schema, ShouldEqual, "Self-Sacrifice")
				So(ranked[2].Schema, ShouldEqual, "Punitiveness")
			})
		})

		Convey("When every schema ties 18 ways", func() {
			pairs := make([]any, 0, 36)
			labels := []string{
				"Abandonment", "Mistrust/Abuse", "Emotional Deprivation",
				"Defectiveness/Shame", "Social Isolation", "Dependence/Incompetence",
				"Vulnerability to Harm", "Enmeshment", "Failure",
				"Entitlement/Grandiosity", "Insufficient Self-Control", "Subjugation",
				"Self-Sacrifice", "Approval-Seeking", "Negativity/Pessimism",
				"Emotional Inhibition", "Unrelenting Standards", "Punitiveness",
			}
			for _, l := range labels {
				pairs = append(pairs, l, 40.0)
			}
			ranked := r.Rank(scoresOf(pairs...))

			Convey("Then the full input order should survive the sort", func() {
				So(ranked, ShouldHaveLength, 18)
				for i, l := range labels {
					So(ranked[i].Schema, ShouldEqual, l)
					So(ranked[i].Rank, ShouldEqual, i+1)
				}
			})
		})

		Convey("When the input is empty", func() {
			So(r.Rank(nil), ShouldBeEmpty)
		})
	})
}

func TestRanker_PickTop(t *testing.T) {
	Convey("Given a ranker with the default threshold", t, func() {
		r := ranking.New()

		Convey("When the top three sit above the threshold", func() {
			top := r.PickTop(r.Rank(scoresOf("A", 90.0, "B", 80.0, "C", 70.0, "D", 60.0)))

			Convey("Then none should be flagged emerging", func() {
				So(top.Primary.Emerging, ShouldBeFalse)
				So(top.Secondary.Emerging, ShouldBeFalse)
				So(top.Tertiary.Emerging, ShouldBeFalse)
			})
		})

		Convey("When secondary and tertiary fall below the threshold", func() {
			top := r.PickTop(r.Rank(scoresOf("A", 90.0, "B", 59.0, "C", 30.0)))

			Convey("Then only ranks 2 and 3 should be emerging", func() {
				So(top.Primary.Emerging, ShouldBeFalse)
				So(top.Secondary.Emerging, ShouldBeTrue)
				So(top.Tertiary.Emerging, ShouldBeTrue)
			})
		})

		Convey("When a low index lands on rank 1", func() {
			top := r.PickTop(r.Rank(scoresOf("A", 10.0, "B", 5.0)))

			Convey("Then the primary is never emerging regardless of value", func() {
				So(top.Primary.Emerging, ShouldBeFalse)
				So(top.Secondary.Emerging, ShouldBeTrue)
			})
		})

		Convey("When an index sits exactly on the threshold", func() {
			top := r.PickTop(r.Rank(scoresOf("A", 90.0, "B", 60.0, "C", 59.999)))

			Convey("Then the boundary should be inclusive of the threshold", func() {
				So(top.Secondary.Emerging, ShouldBeFalse) // 60 is not below 60
				So(top.Tertiary.Emerging, ShouldBeTrue)   // 59.999 is
			})
		})

		Convey("When fewer than three schemas are ranked", func() {
			top := r.PickTop(r.Rank(scoresOf("A", 50.0)))

			Convey("Then missing slots should be nil", func() {
				So(top.Primary, ShouldNotBeNil)
				So(top.Secondary, ShouldBeNil)
				So(top.Tertiary, ShouldBeNil)
			})
		})

		Convey("When the threshold is overridden", func() {
			custom := ranking.New(ranking.WithEmergingThreshold(80))
			top := custom.PickTop(custom.Rank(scoresOf("A", 90.0, "B", 75.0)))
			So(top.Secondary.Emerging, ShouldBeTrue)
		})
	})
}

func TestBuildProfile(t *testing.T) {
	Convey("Given ranked personas and a top selection", t, func() {
		r := ranking.New()
		ranked := r.Rank(scoresOf("A", 90.0, "B", 50.0, "C", 40.0, "D", 10.0))
		top := r.PickTop(ranked)

		Convey("When building the profile", func() {
			profile := ranking.BuildProfile("assess-1", ranked, top)

			Convey("Then the full ordering and the top slots should carry over", func() {
				So(profile.AssessmentID, ShouldEqual, "assess-1")
				So(profile.Personas, ShouldHaveLength, 4)
				So(profile.Primary.Schema, ShouldEqual, "A")
				So(profile.Secondary.Schema, ShouldEqual, "B")
				So(profile.Secondary.Emerging, ShouldBeTrue)
				So(profile.Tertiary.Schema, ShouldEqual, "C")
				So(profile.Personas[3].Rank, ShouldEqual, 4)
			})
		})

		Convey("When the ranking is empty", func() {
			profile := ranking.BuildProfile("assess-2", nil, ranking.TopPersonas{})
			So(profile.Primary, ShouldBeNil)
			So(profile.Personas, ShouldBeEmpty)
		})
	})
}
