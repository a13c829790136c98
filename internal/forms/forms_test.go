package forms

import (
	"errors"
	"testing"
)

func TestCheckLogin(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		form    Login
		wantErr string
	}{
		{name: "valid", form: Login{Email: "ada@example.com", Password: "correct-horse"}},
		{name: "missing email", form: Login{Password: "correct-horse"}, wantErr: "email is required"},
		{name: "malformed email", form: Login{Email: "not-an-email", Password: "x"}, wantErr: "enter a valid email address"},
		{name: "missing password", form: Login{Email: "ada@example.com"}, wantErr: "password is required"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := Check(tc.form)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid form, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !IsValidation(err) {
				t.Fatalf("expected a validation error, got %T", err)
			}
			if err.Error() != tc.wantErr {
				t.Fatalf("message = %q, want %q", err.Error(), tc.wantErr)
			}
		})
	}
}

func TestCheckRegister(t *testing.T) {
	t.Parallel()

	valid := Register{
		Email:    "ada@example.com",
		FullName: "Ada Lovelace",
		Password: "correct-horse",
		Confirm:  "correct-horse",
	}
	if err := Check(valid); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}

	short := valid
	short.Password = "short"
	short.Confirm = "short"
	if err := Check(short); err == nil || err.Error() != "password must be at least 8 characters" {
		t.Fatalf("unexpected error for short password: %v", err)
	}

	mismatched := valid
	mismatched.Confirm = "different-horse"
	if err := Check(mismatched); err == nil || err.Error() != "passwords do not match" {
		t.Fatalf("unexpected error for mismatched confirmation: %v", err)
	}

	missingName := valid
	missingName.FullName = ""
	if err := Check(missingName); err == nil || err.Error() != "full name is required" {
		t.Fatalf("unexpected error for missing name: %v", err)
	}
}

func TestCheckResetPassword(t *testing.T) {
	t.Parallel()

	form := ResetPassword{
		Email:       "ada@example.com",
		NewPassword: "fresh-password",
		Confirm:     "fresh-password",
	}
	if err := Check(form); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}

	form.Confirm = "other"
	if err := Check(form); err == nil || err.Error() != "passwords do not match" {
		t.Fatalf("unexpected error for mismatched confirmation: %v", err)
	}
}

func TestCheckDriveFolder(t *testing.T) {
	t.Parallel()

	if err := Check(DriveFolder{FolderID: "folder-9"}); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}
	if err := Check(DriveFolder{}); err == nil || err.Error() != "folder ID is required" {
		t.Fatalf("unexpected error for empty folder: %v", err)
	}
}

func TestCheckUpload(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "pdf", path: "/home/ada/handbook.pdf"},
		{name: "uppercase extension", path: "report.PDF"},
		{name: "csv", path: "data.csv"},
		{name: "word", path: "notes.docx"},
		{name: "legacy word", path: "notes.doc"},
		{name: "image rejected", path: "photo.png", wantErr: true},
		{name: "no extension", path: "README", wantErr: true},
		{name: "empty path", path: "   ", wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := CheckUpload(tc.path)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected %q to be rejected", tc.path)
				}
				if !IsValidation(err) {
					t.Fatalf("expected a validation error, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected %q to be accepted, got %v", tc.path, err)
			}
		})
	}
}

func TestIsValidationDistinguishesOtherErrors(t *testing.T) {
	t.Parallel()

	if IsValidation(errors.New("dial tcp: connection refused")) {
		t.Fatal("plain errors are not validation failures")
	}
	if !IsValidation(&Error{Field: "Email", Message: "email is required"}) {
		t.Fatal("expected *Error to be a validation failure")
	}
}
