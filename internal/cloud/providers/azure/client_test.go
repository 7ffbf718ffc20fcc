package azure

import (
	"strings"
	"testing"

	"github.com/jodinathan/filedrive/internal/models"
)

// --- buildSASURL tests ---

func TestBuildSASURL_WithStorageAccount(t *testing.T) {
	acct := &models.Account{
		ID:             "work-az",
		StorageAccount: "myaccount",
	}
	creds := &models.Credentials{
		SASToken: "sv=2024-05-04&ss=b&sig=abc",
	}

	url, err := buildSASURL(acct, creds)
	if err != nil {
		t.Fatalf("buildSASURL() error = %v", err)
	}

	expected := "https://myaccount.blob.core.windows.net/?sv=2024-05-04&ss=b&sig=abc"
	if url != expected {
		t.Errorf("buildSASURL() = %q, want %q", url, expected)
	}
}

func TestBuildSASURL_StripsLeadingQuestionMark(t *testing.T) {
	acct := &models.Account{
		ID:             "work-az",
		StorageAccount: "myaccount",
	}
	creds := &models.Credentials{
		SASToken: "?sv=2024-05-04&sig=def",
	}

	url, err := buildSASURL(acct, creds)
	if err != nil {
		t.Fatalf("buildSASURL() error = %v", err)
	}

	if strings.Contains(url, "??") {
		t.Errorf("buildSASURL() double question mark in %q", url)
	}
}

func TestBuildSASURL_CustomEndpoint(t *testing.T) {
	acct := &models.Account{
		ID:       "local-az",
		Endpoint: "http://127.0.0.1:10000/devstoreaccount1/",
	}
	creds := &models.Credentials{
		SASToken: "sv=2024-05-04&sig=ghi",
	}

	url, err := buildSASURL(acct, creds)
	if err != nil {
		t.Fatalf("buildSASURL() error = %v", err)
	}

	expected := "http://127.0.0.1:10000/devstoreaccount1/?sv=2024-05-04&sig=ghi"
	if url != expected {
		t.Errorf("buildSASURL() = %q, want %q", url, expected)
	}
}

func TestBuildSASURL_NoStorageAccount(t *testing.T) {
	acct := &models.Account{ID: "broken-az"}
	creds := &models.Credentials{SASToken: "sv=2024-05-04&sig=jkl"}

	_, err := buildSASURL(acct, creds)
	if err == nil {
		t.Fatal("buildSASURL() should return error when no storage account is set")
	}
}

// --- folderPrefix tests ---

func TestFolderPrefix(t *testing.T) {
	cases := []struct {
		folder string
		want   string
	}{
		{"", ""},
		{"/", ""},
		{"photos", "photos/"},
		{"/photos/", "photos/"},
		{"a/b/c", "a/b/c/"},
	}
	for _, tc := range cases {
		if got := folderPrefix(tc.folder); got != tc.want {
			t.Errorf("folderPrefix(%q) = %q, want %q", tc.folder, got, tc.want)
		}
	}
}
