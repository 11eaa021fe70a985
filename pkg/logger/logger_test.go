package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initializing with the default writer", func() {
			err := Init()

			Convey("Then Get should return a logger", func() {
				So(err, ShouldBeNil)
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initializing with a nil writer", func() {
			err := InitWithWriter(nil)

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging at info level", func() {
			Get().Info(ctx, "query executed", String("view", "competitors.list"), Int("rows", 10))

			Convey("Then the line should carry message, fields and source", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "query executed")
				So(out, ShouldContainSubstring, "view=competitors.list")
				So(out, ShouldContainSubstring, "rows=10")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the context carries a request id", func() {
			rctx := WithRequestID(ctx, "req-42")
			Get().Warn(rctx, "slow query", Error(errors.New("boom")))

			Convey("Then the request id should be logged", func() {
				So(buf.String(), ShouldContainSubstring, "request_id=req-42")
				So(buf.String(), ShouldContainSubstring, "boom")
				So(RequestID(rctx), ShouldEqual, "req-42")
			})
		})

		Convey("When the level is raised to error", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(ctx, "hidden line")
			Get().Error(ctx, "visible line")
			_ = SetLevelString("info")

			Convey("Then lower levels should be dropped", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden line")
				So(buf.String(), ShouldContainSubstring, "visible line")
			})
		})

		Convey("When using a named logger", func() {
			Named("repository").Info(ctx, "opened")

			Convey("Then the component should be attached", func() {
				So(buf.String(), ShouldContainSubstring, "component=repository")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(InitWithWriter(&bytes.Buffer{}), ShouldBeNil)

		Convey("Then known levels should parse", func() {
			for _, lvl := range []string{"debug", "INFO", " warn ", "warning", "error", ""} {
				So(SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("And unknown levels should fail", func() {
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}
