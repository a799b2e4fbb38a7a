package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := context.Background()
	ctx = log.WithRequestID(ctx, "req-123")
	ctx = log.WithDraftID(ctx, "draft-456")

	log.Error(ctx, "boom", errors.New("boom"))

	if !bytes.Contains(buf.Bytes(), []byte(`"request_id"`)) {
		t.Fatalf("expected request_id to be preserved; entry=%s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"draft_id"`)) {
		t.Fatalf("expected draft_id to be preserved; entry=%s", buf.String())
	}
}

func TestLoggerStageFieldSurvivesChaining(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := log.WithStage(context.Background(), "uploading_media")
	ctx = log.WithField(ctx, "position", 3)
	log.Info(ctx, "upload.start")

	if !bytes.Contains(buf.Bytes(), []byte(`"stage":"uploading_media"`)) {
		t.Fatalf("expected stage field; entry=%s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"position":3`)) {
		t.Fatalf("expected position field; entry=%s", buf.String())
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if lvl := ParseLevel(""); lvl.String() != "info" {
		t.Fatalf("expected info level for empty input, got %v", lvl)
	}
	if lvl := ParseLevel("not-a-level"); lvl.String() != "info" {
		t.Fatalf("expected info level for invalid input, got %v", lvl)
	}
	if lvl := ParseLevel("WARN"); lvl.String() != "warn" {
		t.Fatalf("expected warn level, got %v", lvl)
	}
}
