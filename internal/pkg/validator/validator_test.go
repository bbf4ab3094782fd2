package validator

import (
	"errors"
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"123e4567-e89b-12d3-a456-426614174000",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"",
	}
	for _, id := range valid {
		if !IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = true, want false", id)
		}
	}
}

func TestIsValidMonth(t *testing.T) {
	valid := []string{"2025-01", "1999-12", "2024-10"}
	invalid := []string{"2025-13", "2025-00", "2025-1", "25-01", "2025/01", "January 2025", ""}
	for _, m := range valid {
		if !IsValidMonth(m) {
			t.Errorf("IsValidMonth(%q) = false, want true", m)
		}
	}
	for _, m := range invalid {
		if IsValidMonth(m) {
			t.Errorf("IsValidMonth(%q) = true, want false", m)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	if _, ok := IsValidDate("2025-02-28"); !ok {
		t.Error("IsValidDate(2025-02-28) = false, want true")
	}
	for _, d := range []string{"2025-02-30", "2025-2-1", "01-02-2025", ""} {
		if _, ok := IsValidDate(d); ok {
			t.Errorf("IsValidDate(%q) = true, want false", d)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"Present", "Absent"}
	if !IsInSlice("Absent", slice) {
		t.Error("IsInSlice(Absent) = false, want true")
	}
	if IsInSlice("Late", slice) {
		t.Error("IsInSlice(Late) = true, want false")
	}
}

type sampleRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Month      string `json:"month" validate:"required,month"`
	Date       string `json:"date" validate:"omitempty,date"`
	Days       int    `json:"days" validate:"gte=0"`
}

func TestStruct(t *testing.T) {
	if err := Struct(sampleRequest{EmployeeID: "e1", Month: "2025-01", Date: "2025-01-31"}); err != nil {
		t.Fatalf("Struct(valid) = %v, want nil", err)
	}

	err := Struct(sampleRequest{Month: "2025-13", Date: "31/01/2025", Days: -1})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Struct(invalid) error type = %T, want ValidationErrors", err)
	}

	got := verrs.ToMap()
	want := map[string]string{
		"employee_id": "is required",
		"month":       "must be in YYYY-MM format",
		"date":        "must be in YYYY-MM-DD format",
		"days":        "must be greater than or equal to 0",
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Errorf("field %q message = %q, want %q", field, got[field], msg)
		}
	}
}

func TestValidationErrorsErr(t *testing.T) {
	var v ValidationErrors
	if v.Err() != nil {
		t.Error("empty ValidationErrors.Err() should be nil")
	}
	v.Add("basic", "must be greater than 0")
	if v.Err() == nil {
		t.Error("non-empty ValidationErrors.Err() should not be nil")
	}
	if v.Error() != "basic: must be greater than 0" {
		t.Errorf("Error() = %q", v.Error())
	}
}
