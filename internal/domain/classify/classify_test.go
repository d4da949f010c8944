package classify_test

import (
	"bytes"
	"testing"

	"github.com/okian/tiewatch/internal/domain/classify"
	"github.com/okian/tiewatch/internal/domain/enumerate"
	"github.com/okian/tiewatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func group(id model.GroupID, matches map[model.Pair]model.Outcome) (model.GroupRecord, model.Analysis) {
	rec := model.NewGroupRecord(id, matches)
	return rec, classify.Analyze(rec, enumerate.Enumerate(rec))
}

func TestHasThreeWayTie(t *testing.T) {
	Convey("Given score vectors", t, func() {
		Convey("Then exactly three players on one count is a tie", func() {
			So(classify.HasThreeWayTie(model.ScoreVector{1, 1, 1}, 3), ShouldBeTrue)
			So(classify.HasThreeWayTie(model.ScoreVector{3, 1, 1, 1}, 4), ShouldBeTrue)
			So(classify.HasThreeWayTie(model.ScoreVector{0, 2, 2, 0, 2}, 5), ShouldBeTrue)
		})

		Convey("Then four players on one count is not a tie", func() {
			So(classify.HasThreeWayTie(model.ScoreVector{1, 1, 1, 1}, 4), ShouldBeFalse)
		})

		Convey("Then fewer than three players never tie", func() {
			So(classify.HasThreeWayTie(model.ScoreVector{0, 0}, 2), ShouldBeFalse)
			So(classify.HasThreeWayTie(model.ScoreVector{}, 0), ShouldBeFalse)
		})

		Convey("Then a two-way tie is not enough", func() {
			So(classify.HasThreeWayTie(model.ScoreVector{2, 1, 1, 0}, 4), ShouldBeFalse)
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given a decided three player cycle", t, func() {
		_, a := group("A", map[model.Pair]model.Outcome{
			model.NewPair("a", "b"): model.Decided("a"),
			model.NewPair("b", "c"): model.Decided("b"),
			model.NewPair("a", "c"): model.Decided("c"),
		})

		Convey("Then the tie is guaranteed", func() {
			So(a.Classification, ShouldEqual, model.Guaranteed)
			So(a.Branches.Len(), ShouldEqual, 1)
			So(a.Pending, ShouldEqual, 0)
			So(a.Decided, ShouldEqual, 3)
		})
	})

	Convey("Given one player who won both decided matches", t, func() {
		_, a := group("B", map[model.Pair]model.Outcome{
			model.NewPair("a", "b"): model.Decided("a"),
			model.NewPair("a", "c"): model.Decided("a"),
			model.NewPair("b", "c"): model.Pending,
		})

		Convey("Then the tie is impossible", func() {
			So(a.Classification, ShouldEqual, model.Impossible)
			So(a.Branches.Vectors, ShouldResemble, []model.ScoreVector{{2, 1, 0}, {2, 0, 1}})
		})
	})

	Convey("Given four players where the leader already beat everyone", t, func() {
		_, a := group("C", map[model.Pair]model.Outcome{
			model.NewPair("a", "b"): model.Decided("a"),
			model.NewPair("a", "c"): model.Decided("a"),
			model.NewPair("a", "d"): model.Decided("a"),
			model.NewPair("b", "c"): model.Pending,
			model.NewPair("b", "d"): model.Pending,
			model.NewPair("c", "d"): model.Pending,
		})

		Convey("Then only the cyclic branches tie and the tie is possible", func() {
			So(a.Classification, ShouldEqual, model.Possible)
			So(a.Branches.Len(), ShouldEqual, 8)
		})
	})

	Convey("Given an empty group", t, func() {
		_, a := group("D", nil)

		Convey("Then the tie is impossible", func() {
			So(a.Classification, ShouldEqual, model.Impossible)
		})
	})

	Convey("Given no branches at all", t, func() {
		So(classify.Classify(model.Branches{}), ShouldEqual, model.Impossible)
	})

	Convey("Given a group with nothing left to play", t, func() {
		rec, a := group("E", map[model.Pair]model.Outcome{
			model.NewPair("a", "b"): model.Decided("b"),
			model.NewPair("a", "c"): model.Decided("a"),
			model.NewPair("a", "d"): model.Decided("d"),
			model.NewPair("b", "c"): model.Decided("c"),
			model.NewPair("b", "d"): model.Decided("b"),
			model.NewPair("c", "d"): model.Decided("c"),
		})

		Convey("Then the label follows the single branch", func() {
			So(rec.PendingCount(), ShouldEqual, 0)
			So(a.Branches.Vectors, ShouldResemble, []model.ScoreVector{{1, 2, 2, 1}})
			So(a.Classification, ShouldEqual, model.Impossible)
		})
	})
}

func TestRender(t *testing.T) {
	names := classify.NameMap{"a": "Alice", "b": "Bob"}

	Convey("Given a possible tie", t, func() {
		_, a := group("C", map[model.Pair]model.Outcome{
			model.NewPair("a", "b"): model.Decided("a"),
			model.NewPair("a", "c"): model.Pending,
			model.NewPair("b", "c"): model.Pending,
		})
		var buf bytes.Buffer

		Convey("When it is rendered", func() {
			So(classify.Render(&buf, a, names), ShouldBeNil)

			Convey("Then every branch is listed with display names", func() {
				So(a.Classification, ShouldEqual, model.Possible)
				So(buf.String(), ShouldEqual, "group C: POSSIBLE, possible scores:\n"+
					"Alice: 2, Bob: 1, c: 0\n"+
					"Alice: 1, Bob: 1, c: 1\n"+
					"Alice: 2, Bob: 0, c: 1\n"+
					"Alice: 1, Bob: 0, c: 2\n")
			})
		})
	})

	Convey("Given an impossible tie", t, func() {
		_, a := group("7", map[model.Pair]model.Outcome{
			model.NewPair("a", "b"): model.Pending,
		})
		var buf bytes.Buffer
		So(classify.Render(&buf, a, names), ShouldBeNil)

		Convey("Then only the header is written", func() {
			So(buf.String(), ShouldEqual, "group 7: IMPOSSIBLE tie impossible\n")
			So(classify.BranchLines(a, names), ShouldBeNil)
		})
	})

	Convey("Given several analyses", t, func() {
		_, first := group("1", nil)
		_, second := group("2", nil)
		var buf bytes.Buffer
		So(classify.RenderAll(&buf, []model.Analysis{first, second}, names), ShouldBeNil)

		Convey("Then each group is preceded by a blank line", func() {
			So(buf.String(), ShouldEqual, "\ngroup 1: IMPOSSIBLE tie impossible\n\ngroup 2: IMPOSSIBLE tie impossible\n")
		})
	})
}
