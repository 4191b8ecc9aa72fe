package config

import (
	"os"
	"path/filepath"

	"github.com/tauraamui/duocam/pkg/configdef"
)

type defaultSettingKey uint

const (
	BACKEND            defaultSettingKey = 0x0
	CAPTUREPREFIX      defaultSettingKey = 0x1
	ORIENTATION        defaultSettingKey = 0x2
	BINDTIMEOUTSECONDS defaultSettingKey = 0x3
	FPS                defaultSettingKey = 0x4
	DATETIMEFORMAT     defaultSettingKey = 0x5
)

var defaultSettings = map[defaultSettingKey]interface{}{
	BACKEND:            "opencv",
	CAPTUREPREFIX:      "duocam",
	ORIENTATION:        configdef.OrientationAuto,
	BINDTIMEOUTSECONDS: 10,
	FPS:                30,
	DATETIMEFORMAT:     "2006/01/02 15:04:05.999",
}

// defaultValues is the starting point every config file is decoded
// over, so booleans which default to true stay true unless set.
func defaultValues() configdef.Values {
	return configdef.Values{
		Backend:            defaultSettings[BACKEND].(string),
		CaptureDirectory:   defaultCaptureDirectory(),
		CapturePrefix:      defaultSettings[CAPTUREPREFIX].(string),
		Orientation:        defaultSettings[ORIENTATION].(string),
		Fullscreen:         true,
		BindTimeoutSeconds: defaultSettings[BINDTIMEOUTSECONDS].(int),
		FPS:                defaultSettings[FPS].(int),
		DateTimeFormat:     defaultSettings[DATETIMEFORMAT].(string),
		ReleaseOnRebind:    true,
	}
}

func loadDefaultsForUnsetValues(values *configdef.Values) {
	if len(values.Backend) == 0 {
		values.Backend = defaultSettings[BACKEND].(string)
	}
	if len(values.CaptureDirectory) == 0 {
		values.CaptureDirectory = defaultCaptureDirectory()
	}
	if len(values.CapturePrefix) == 0 {
		values.CapturePrefix = defaultSettings[CAPTUREPREFIX].(string)
	}
	if len(values.Orientation) == 0 {
		values.Orientation = defaultSettings[ORIENTATION].(string)
	}
	if values.FPS == 0 {
		values.FPS = defaultSettings[FPS].(int)
	}
	if len(values.DateTimeFormat) == 0 {
		values.DateTimeFormat = defaultSettings[DATETIMEFORMAT].(string)
	}
}

var userHomeDir = func() (string, error) {
	return os.UserHomeDir()
}

func defaultCaptureDirectory() string {
	home, err := userHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Pictures", appName)
}
