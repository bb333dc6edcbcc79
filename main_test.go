package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/habedi/escola/db"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureLogLevelFromEnv(t *testing.T) {
	levels := map[string]zerolog.Level{
		"":        zerolog.Disabled,
		"0":       zerolog.Disabled,
		"false":   zerolog.Disabled,
		" FALSE ": zerolog.Disabled,
		"1":       zerolog.DebugLevel,
		"true":    zerolog.DebugLevel,
		"verbose": zerolog.DebugLevel,
	}
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.Disabled) })

	for value, want := range levels {
		t.Setenv(debugEnvVar, value)
		configureLogLevelFromEnv()
		assert.Equal(t, want, zerolog.GlobalLevel(), "%s=%q", debugEnvVar, value)
	}
}

func TestHandleInterruptClosesSessionDatabase(t *testing.T) {
	oldPath, oldDB := db.Path, db.Db
	db.Path = filepath.Join(t.TempDir(), "session.db")
	t.Cleanup(func() { db.Path, db.Db = oldPath, oldDB })

	require.NoError(t, db.InitDB())
	sqlDB, err := db.GetDB().DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())

	type exitCall struct {
		code    int
		pingErr error
	}
	exits := make(chan exitCall, 1)
	var logged []string

	stop := make(chan os.Signal, 1)
	go handleInterrupt(stop,
		func(msg string) { logged = append(logged, msg) },
		func(code int) { exits <- exitCall{code: code, pingErr: sqlDB.Ping()} })
	stop <- os.Interrupt

	select {
	case call := <-exits:
		assert.Equal(t, 1, call.code)
		assert.Error(t, call.pingErr, "the session database should be closed before exiting")
		assert.Equal(t, []string{"Interrupt signal received. Exiting..."}, logged)
	case <-time.After(2 * time.Second):
		t.Fatal("handleInterrupt did not exit")
	}
}

func TestHandleInterruptWithoutDatabase(t *testing.T) {
	oldDB := db.Db
	db.Db = nil
	t.Cleanup(func() { db.Db = oldDB })

	exits := make(chan int, 1)
	stop := make(chan os.Signal, 1)
	go handleInterrupt(stop, func(string) {}, func(code int) { exits <- code })
	stop <- os.Interrupt

	select {
	case code := <-exits:
		assert.Equal(t, 1, code)
	case <-time.After(2 * time.Second):
		t.Fatal("handleInterrupt did not exit")
	}
}

func TestSetupInterruptListenerIsBuffered(t *testing.T) {
	stop := setupInterruptListener()
	require.NotNil(t, stop)
	assert.Equal(t, 1, cap(stop), "a signal must not be dropped while nobody is reading")
}
