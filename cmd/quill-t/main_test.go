package main

import (
	"bytes"
	"testing"

	"github.com/justyntemme/quill-t/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteList(t *testing.T) {
	var buf bytes.Buffer
	err := writeList(&buf, []models.Author{
		{ID: "a1", Name: "Jane Doe", BookCount: models.IntPtr(3), TotalBooksCount: models.IntPtr(10), DownloadedCount: models.IntPtr(4), Monitored: true},
		{ID: "a2", Name: "Unknown Writer", BookCount: models.IntPtr(2)},
		{ID: "a3", Name: "Solo", BookCount: models.IntPtr(1)},
		{ID: "a4", Name: "Prolific", BookCount: models.IntPtr(1000)},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "10 total, 3 in library, 4 downloaded")
	assert.Contains(t, out, "40%")
	assert.Contains(t, out, "2 books in library")
	assert.Contains(t, out, "1 book in library")
	assert.Contains(t, out, models.LibrarySentence(1000))
	assert.Contains(t, out, "4 authors")
}

func TestWriteList_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeList(&buf, nil))
	assert.Contains(t, buf.String(), "0 authors")
}
