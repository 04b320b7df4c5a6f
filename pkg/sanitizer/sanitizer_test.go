package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"only spaces", "    ", ""},
		{"leading and trailing", "  Algorithms Final  ", "Algorithms Final"},
		{"internal runs collapsed", "Algorithms    Final\tExam", "Algorithms Final Exam"},
		{"newlines collapsed", "Data\nStructures", "Data Structures"},
		{"already clean", "Operating Systems", "Operating Systems"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.expected {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeExamID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  CS-401 Midterm ", "cs-401 midterm"},
		{"FINALS-2026", "finals-2026"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeExamID(tt.input); got != tt.expected {
			t.Errorf("NormalizeExamID(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
