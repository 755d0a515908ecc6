package config

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/kplay-cli/kplay/filesystem"
	"github.com/kplay-cli/kplay/key"
	"github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestSetup(t *testing.T) {
	convey.Convey("Config Setup", t, func() {
		filesystem.SetMemMapFs()
		defer filesystem.SetOsFs()
		t.Setenv("KPLAY_CONFIG_PATH", "/kplay-config")

		convey.So(Setup(), convey.ShouldBeNil)

		convey.Convey("Every registered default is visible through viper", func() {
			for name := range Default {
				convey.So(viper.IsSet(name), convey.ShouldBeTrue)
			}
		})

		convey.Convey("Player defaults match the documented values", func() {
			convey.So(viper.GetInt(key.PlayerRewindIncrementMs), convey.ShouldEqual, 5000)
			convey.So(viper.GetInt(key.PlayerFastForwardIncrementMs), convey.ShouldEqual, 15000)
			convey.So(viper.GetInt(key.PlayerShowTimeoutMs), convey.ShouldEqual, 5000)
			convey.So(viper.GetString(key.PlayerSeekStrategy), convey.ShouldEqual, "forward")
		})

		convey.Convey("A deleted config file is not an error", func() {
			convey.So(filesystem.API().WriteFile("/kplay-config/kplay.toml", []byte("[player]\nvolume = 50\n"), 0o644), convey.ShouldBeNil)
			convey.So(Setup(), convey.ShouldBeNil)
			convey.So(viper.GetInt(key.PlayerVolume), convey.ShouldEqual, 50)

			convey.So(filesystem.API().Remove("/kplay-config/kplay.toml"), convey.ShouldBeNil)
			convey.So(Setup(), convey.ShouldBeNil)
		})

		convey.Convey("A config file overrides defaults", func() {
			convey.So(filesystem.API().WriteFile("/kplay-config/kplay.toml", []byte("[player]\nlooping = true\n"), 0o644), convey.ShouldBeNil)
			convey.So(Setup(), convey.ShouldBeNil)
			convey.So(viper.GetBool(key.PlayerLooping), convey.ShouldBeTrue)
			viper.Set(key.PlayerLooping, false)
		})
	})
}

func TestField(t *testing.T) {
	convey.Convey("Given the looping field", t, func() {
		field := Default[key.PlayerLooping]

		convey.Convey("Env is prefixed and upper-cased", func() {
			convey.So(field.Env(), convey.ShouldEqual, "KPLAY_PLAYER_LOOPING")
		})

		convey.Convey("JSON carries the type name", func() {
			data, err := json.Marshal(&field)
			convey.So(err, convey.ShouldBeNil)

			var decoded map[string]any
			convey.So(json.Unmarshal(data, &decoded), convey.ShouldBeNil)
			convey.So(decoded["type"], convey.ShouldEqual, "bool")
			convey.So(decoded["key"], convey.ShouldEqual, key.PlayerLooping)
		})

		convey.Convey("EnvKeyReplacer converts dots to underscores", func() {
			convey.So(EnvKeyReplacer.Replace("player.show_timeout_ms"), convey.ShouldEqual, "player_show_timeout_ms")
		})
	})
}

func TestEdit(t *testing.T) {
	convey.Convey("Given the registered keys", t, func() {
		filesystem.SetMemMapFs()
		defer filesystem.SetOsFs()
		t.Setenv("KPLAY_CONFIG_PATH", "/kplay-config")
		convey.So(Setup(), convey.ShouldBeNil)

		convey.Convey("An unknown key suggests the closest one", func() {
			_, err := Lookup("player.lopping")

			var unknown *UnknownKeyError
			convey.So(errors.As(err, &unknown), convey.ShouldBeTrue)
			convey.So(unknown.Closest, convey.ShouldEqual, key.PlayerLooping)
			convey.So(err.Error(), convey.ShouldContainSubstring, key.PlayerLooping)
		})

		convey.Convey("Values are parsed to the type of the default", func() {
			value, err := Parse(key.PlayerSpeed, []string{"1.5"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(value, convey.ShouldEqual, 1.5)

			value, err = Parse(key.PlayerVolume, []string{"70"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(value, convey.ShouldEqual, 70)

			value, err = Parse(key.PlayerLooping, []string{"true"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(value, convey.ShouldEqual, true)

			value, err = Parse(key.PlayerSeekStrategy, []string{"clamp"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(value, convey.ShouldEqual, "clamp")
		})

		convey.Convey("Malformed values are rejected", func() {
			_, err := Parse(key.PlayerVolume, []string{"loud"})
			convey.So(err, convey.ShouldNotBeNil)

			_, err = Parse(key.PlayerLooping, []string{"true", "false"})
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("Set then Reset restores the default", func() {
			_, err := Set(key.PlayerVolume, []string{"20"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(viper.GetInt(key.PlayerVolume), convey.ShouldEqual, 20)

			convey.So(Reset(key.PlayerVolume), convey.ShouldBeNil)
			convey.So(viper.GetInt(key.PlayerVolume), convey.ShouldEqual, 100)
		})

		convey.Convey("Write creates the config file", func() {
			_, err := Set(key.PlayerSpeed, []string{"2"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(Write(), convey.ShouldBeNil)
			convey.So(Reset(), convey.ShouldBeNil)

			exists, err := filesystem.API().Exists(File())
			convey.So(err, convey.ShouldBeNil)
			convey.So(exists, convey.ShouldBeTrue)
		})

		convey.Convey("Fields are sorted by key", func() {
			fields, err := Fields(key.PlayerVolume, key.LogsLevel)
			convey.So(err, convey.ShouldBeNil)
			convey.So(fields, convey.ShouldHaveLength, 2)
			convey.So(fields[0].Key, convey.ShouldEqual, key.LogsLevel)
		})
	})
}
