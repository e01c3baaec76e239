package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

var now = time.Now()

var (
	defaultDuration  = time.Hour * 336 // 2 weeks
	defaultStartTime = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
)

const (
	AppName    = "vevents"
	AppVersion = "(unknown)"
)

func MkDirIfNotExists(p string) error {
	fi, err := os.Stat(p)
	if err != nil && os.IsNotExist(err) {
		err = os.MkdirAll(p, os.ModeDir|os.ModePerm|0700)
	}
	if err != nil {
		return err
	}
	fi, err = os.Stat(p)
	if err != nil {
		return err
	} else if !fi.IsDir() {
		return fmt.Errorf("path exists, and is not a folder %s", p)
	}
	return nil
}

func DataPath() string {
	homeDir, _ := os.UserHomeDir()
	xdgDataPath := filepath.Join(homeDir, ".local", "share")
	appPath := filepath.Join(xdgDataPath, AppName)

	if _, err := os.Stat(appPath); err != nil && errors.Is(err, os.ErrNotExist) {
		err := MkDirIfNotExists(appPath)
		if err != nil {
			log.Fatalf("Error: %s", err.Error())
		}
	}
	return appPath
}
