package notes

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/mind-engage/studyhub/internal/storage"
)

func newService(t *testing.T) (*Service, *storage.FSStore) {
	t.Helper()
	s, _, _ := newStores(t)
	blobs, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(s, blobs, "http://localhost:3001/", nil)
	svc.Now = func() time.Time { return time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC) }
	return svc, blobs
}

func TestUploadDefaults(t *testing.T) {
	svc, _ := newService(t)
	n, err := svc.Upload(context.Background(), Upload{
		FileName:    "Chapter 3 Notes.pdf",
		ContentType: "application/pdf",
		Size:        1536,
		OwnerID:     "u1",
	}, strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatal(err)
	}
	if n.Title != "Chapter 3 Notes" || n.Summary != DefaultSummary || n.Category != DefaultCategory || n.Student != DefaultStudent {
		t.Errorf("defaults not applied: %+v", n)
	}
	if n.Status != StatusPending || n.UploadDate != "2024-05-10" || n.Size != "1.5 KiB" {
		t.Errorf("note = %+v", n)
	}
	if !strings.HasSuffix(n.FileName, "-Chapter 3 Notes.pdf") {
		t.Errorf("FileName = %q", n.FileName)
	}
	if n.FileURL != "http://localhost:3001/uploads/"+n.FileName {
		t.Errorf("FileURL = %q", n.FileURL)
	}

	rc, err := svc.Open(n.FileName)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := io.ReadAll(rc)
	rc.Close()
	if string(b) != "%PDF-1.4" {
		t.Errorf("stored body = %q", b)
	}
}

func TestUploadRejectsType(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Upload(context.Background(), Upload{FileName: "x.exe", ContentType: "application/x-msdownload"}, strings.NewReader("MZ"))
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("err = %v", err)
	}
	if !AllowedType("text/plain; charset=utf-8") {
		t.Error("text/plain with params rejected")
	}

	// declared PDF, actually a script
	_, err = svc.Upload(context.Background(), Upload{FileName: "notes.pdf", ContentType: "application/pdf"}, strings.NewReader("#!/bin/sh\nrm -rf /\n"))
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("mismatched content err = %v", err)
	}

	// csv is a text/plain child
	if _, err := svc.Upload(context.Background(), Upload{FileName: "marks.txt", ContentType: "text/plain"}, strings.NewReader("a,b,c\n1,2,3\n4,5,6\n")); err != nil {
		t.Fatalf("csv as text err = %v", err)
	}
}

func TestDeletePermissions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	up := func(owner string) Note {
		n, err := svc.Upload(ctx, Upload{FileName: "a.txt", ContentType: "text/plain", OwnerID: owner}, strings.NewReader("hi"))
		if err != nil {
			t.Fatal(err)
		}
		return n
	}

	n := up("u1")
	if err := svc.Delete(ctx, n.ID, "u2", false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("other user err = %v", err)
	}
	if err := svc.Delete(ctx, n.ID, "u1", false); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Open(n.FileName); err == nil {
		t.Error("file still present after delete")
	}
	if err := svc.Delete(ctx, n.ID, "u1", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}

	approved := up("u1")
	if _, err := svc.Store.Approve(ctx, approved.ID, DefaultTeacher, 50); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, approved.ID, "u1", false); !errors.Is(err, ErrForbidden) {
		t.Errorf("owner deleting approved note err = %v", err)
	}
	if err := svc.Delete(ctx, approved.ID, "teacher-1", true); err != nil {
		t.Errorf("moderator delete: %v", err)
	}
}

func TestOpenRejectsTraversal(t *testing.T) {
	svc, _ := newService(t)
	if _, err := svc.Open("../secret"); !errors.Is(err, storage.ErrBadKey) {
		t.Fatalf("err = %v", err)
	}
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	got := StartOfDay(time.Date(2024, 5, 10, 23, 59, 0, 0, loc))
	if !got.Equal(time.Date(2024, 5, 10, 0, 0, 0, 0, loc)) {
		t.Fatalf("got %v", got)
	}
}
