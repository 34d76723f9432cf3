package board

import (
	"regexp"
	"strings"
)

// NoTargetJob is shown and matched for candidates whose notes carry no annotation.
const NoTargetJob = "未指定"

// targetJobPattern matches, one per line, the structured markers
// "【目標職缺】title (company)" and "目標職缺：title (company)" as well as the
// legacy "應徵：title (company)" form.
var targetJobPattern = regexp.MustCompile(`(?:【目標職缺】|目標職缺[：:]|應徵：)[ \t]*(.+?)[ \t]*\((.+?)\)`)

// ExtractTargetJobs returns every target job annotated in notes, normalised to
// "title (company)", deduplicated and in document order.
func ExtractTargetJobs(notes string) []string {
	if notes == "" {
		return nil
	}

	matches := targetJobPattern.FindAllStringSubmatch(notes, -1)
	seen := make(map[string]struct{}, len(matches))
	jobs := make([]string, 0, len(matches))
	for _, m := range matches {
		title := strings.TrimSpace(m[1])
		company := strings.TrimSpace(m[2])
		if title == "" || company == "" {
			continue
		}
		job := title + " (" + company + ")"
		if _, dup := seen[job]; dup {
			continue
		}
		seen[job] = struct{}{}
		jobs = append(jobs, job)
	}
	return jobs
}

// PrimaryTargetJob returns the first annotated job, or NoTargetJob.
func PrimaryTargetJob(notes string) string {
	jobs := ExtractTargetJobs(notes)
	if len(jobs) == 0 {
		return NoTargetJob
	}
	return jobs[0]
}
