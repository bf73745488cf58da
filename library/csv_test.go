package library

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSVQuotesFields(t *testing.T) {
	books := []*Book{
		{ID: 1, Title: "Dune", Author: "Herbert", Status: StatusRead},
		{ID: 2, Title: "Eats, Shoots & Leaves", Author: `Lynne "Truss"`, Status: StatusUnread},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, books))

	want := "Title,Author,Status\r\n" +
		"Dune,Herbert,read\r\n" +
		`"Eats, Shoots & Leaves","Lynne ""Truss""",unread` + "\r\n"
	assert.Equal(t, want, buf.String())
}

func TestEnsureCSVExtension(t *testing.T) {
	assert.Equal(t, "books.csv", EnsureCSVExtension("books"))
	assert.Equal(t, "books.csv", EnsureCSVExtension("books.csv"))
	assert.Equal(t, "books.txt", EnsureCSVExtension("books.txt"))
	assert.Equal(t, filepath.Join("out", "list.csv"), EnsureCSVExtension(filepath.Join("out", "list")))
}

func TestExportCSVWritesFile(t *testing.T) {
	dir := t.TempDir()
	books := []*Book{{ID: 1, Title: "Dune", Author: "Herbert", Status: StatusUnread}}

	out, err := ExportCSV(filepath.Join(dir, "mine"), books)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mine.csv"), out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Title,Author,Status\r\nDune,Herbert,unread\r\n", string(data))
}

func TestExportCSVFailureLeavesNoFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "missing-dir", "books.csv")

	_, err := ExportCSV(target, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExport))
	assert.False(t, errors.Is(err, ErrStorage))

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))

	_, err = ExportCSV("   ", nil)
	assert.ErrorIs(t, err, ErrExport)
}

func TestReadCSV(t *testing.T) {
	in := "title,AUTHOR,Status\n" +
		"Dune,Herbert,read\n" +
		"\"Eats, Shoots & Leaves\",  Truss ,\n" +
		"Emma,Austen,UNREAD\n"

	recs, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, ImportRecord{Line: 2, Title: "Dune", Author: "Herbert", Status: StatusRead}, recs[0])
	assert.Equal(t, "Eats, Shoots & Leaves", recs[1].Title)
	assert.Equal(t, "Truss", recs[1].Author)
	assert.Equal(t, StatusUnread, recs[1].Status)
	assert.Equal(t, StatusUnread, recs[2].Status)
}

func TestReadCSVWithoutStatusColumn(t *testing.T) {
	recs, err := ReadCSV(strings.NewReader("Author,Title\nHerbert,Dune\n"))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Dune", recs[0].Title)
	assert.Equal(t, "Herbert", recs[0].Author)
	assert.Equal(t, StatusUnread, recs[0].Status)
}

func TestReadCSVRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
		msg  string
	}{
		{"empty", "", "empty csv"},
		{"no author column", "Title,Status\nDune,read\n", "header"},
		{"blank title", "Title,Author\nDune,Herbert\n ,Nobody\n", "line 3"},
		{"bad status", "Title,Author,Status\nDune,Herbert,finished\n", "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
