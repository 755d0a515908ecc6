package player

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestProcessEvent(t *testing.T) {
	Convey("Given an event listener", t, func() {
		type call struct {
			name string
			data interface{}
		}
		var calls []call
		el := NewEventListener("", func(name string, data interface{}) {
			calls = append(calls, call{name, data})
		})

		Convey("Property changes deliver the property value", func() {
			el.processEvent([]byte(`{"event":"property-change","id":1,"name":"time-pos","data":12.5}`))
			So(calls, ShouldResemble, []call{{"time-pos", 12.5}})
		})

		Convey("Other events deliver the whole message", func() {
			el.processEvent([]byte(`{"event":"end-file","reason":"error","file_error":"unrecognized file format"}`))
			So(calls, ShouldHaveLength, 1)
			So(calls[0].name, ShouldEqual, "end-file")
			So(calls[0].data.(map[string]interface{})["reason"], ShouldEqual, "error")
		})

		Convey("Command replies and garbage are ignored", func() {
			el.processEvent([]byte(`{"error":"success","data":null,"request_id":0}`))
			el.processEvent([]byte(`not json`))
			So(calls, ShouldBeEmpty)
		})
	})
}
