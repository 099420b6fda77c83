package chapter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParseJobs decodes and validates a JSON job list.
// Row numbers in errors are 1-based.
func ParseJobs(data []byte) ([]Job, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, Errorf(KindInvalidInput, "job data is empty")
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		var decoded any
		if json.Unmarshal(data, &decoded) == nil {
			if _, isArray := decoded.([]any); isArray {
				return nil, Errorf(KindInvalidInput, "every job must be an object with \"time\" and \"title\"")
			}
			return nil, Errorf(KindInvalidInput, "job data must be a JSON array")
		}
		return nil, Wrap(KindInvalidInput, err, "invalid JSON")
	}
	if len(raw) == 0 {
		return nil, Errorf(KindNoJobs, "job list must not be empty")
	}

	jobs := make([]Job, 0, len(raw))
	for i, item := range raw {
		t, _ := item["time"].(string)
		title, _ := item["title"].(string)
		if t == "" || title == "" {
			return nil, Errorf(KindInvalidInput, "row %d: \"time\" and \"title\" are required", i+1)
		}
		if err := ValidateTime(t); err != nil {
			return nil, Wrap(KindInvalidTime, err, fmt.Sprintf("row %d", i+1))
		}
		jobs = append(jobs, Job{Time: t, Title: title})
	}
	return jobs, nil
}

// ValidateJobs applies the ParseJobs rules to an already decoded list
func ValidateJobs(jobs []Job) error {
	if len(jobs) == 0 {
		return Errorf(KindNoJobs, "job list must not be empty")
	}
	for i, j := range jobs {
		if j.Time == "" || j.Title == "" {
			return Errorf(KindInvalidInput, "row %d: \"time\" and \"title\" are required", i+1)
		}
		if err := ValidateTime(j.Time); err != nil {
			return Wrap(KindInvalidTime, err, fmt.Sprintf("row %d", i+1))
		}
	}
	return nil
}

// SampleJobs is a small example job list
func SampleJobs() []Job {
	return []Job{
		{Time: "00:00:00", Title: "Giriş ve Tanıtım"},
		{Time: "00:05:30", Title: "Ana Konu Açıklaması"},
		{Time: "00:15:00", Title: "Pratik Uygulama"},
		{Time: "00:25:45", Title: "Soru-Cevap Bölümü"},
		{Time: "00:35:00", Title: "Kapanış ve Özet"},
	}
}
