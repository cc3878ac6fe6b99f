package scoring

import (
	"fmt"

	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

type scores map[domain.Subject]float64

func student(id, class string, sc scores) domain.StudentRecord {
	r := domain.StudentRecord{StudentID: id, Name: "name-" + id, Class: class}
	for s, v := range sc {
		r.Scores.Set(s, v)
	}
	return r
}

func pointers(records []domain.StudentRecord) []*domain.StudentRecord {
	out := make([]*domain.StudentRecord, len(records))
	for i := range records {
		out[i] = &records[i]
	}
	return out
}

// threeStudentExam is the small mixed-track roster used across tests.
func threeStudentExam() domain.ExamSnapshot {
	return domain.ExamSnapshot{
		ExamNumber: 1,
		ExamName:   "期中",
		Students: []domain.StudentRecord{
			student("s1", "1", scores{
				domain.SubjectChinese: 90, domain.SubjectMath: 85, domain.SubjectEnglish: 88,
				domain.SubjectPhysics: 75,
			}),
			student("s2", "1", scores{
				domain.SubjectChinese: 80, domain.SubjectMath: 75, domain.SubjectEnglish: 78,
				domain.SubjectHistory: 60,
			}),
			student("s3", "1", scores{
				domain.SubjectChinese: 70, domain.SubjectMath: 65, domain.SubjectEnglish: 68,
				domain.SubjectHistory: 50,
			}),
		},
	}
}

// generatedExam builds a deterministic roster of n students over three
// classes with a sprinkling of absent scores.
func generatedExam(number, n int) domain.ExamSnapshot {
	snap := domain.ExamSnapshot{ExamNumber: number, ExamName: fmt.Sprintf("exam-%d", number)}
	for i := 0; i < n; i++ {
		r := domain.StudentRecord{
			StudentID: fmt.Sprintf("%03d", i),
			Name:      fmt.Sprintf("student-%d", i),
			Class:     fmt.Sprintf("%d", i%3+1),
		}
		for _, s := range domain.AllSubjects() {
			v := float64((i*37+int(s)*11+number*5)%61 + 40)
			if (i+int(s))%7 == 0 {
				v = 0
			}
			r.Scores.Set(s, v)
		}
		snap.Students = append(snap.Students, r)
	}
	return snap
}

func byID(snap domain.ExamSnapshot) map[string]domain.StudentRecord {
	out := make(map[string]domain.StudentRecord, len(snap.Students))
	for _, r := range snap.Students {
		out[r.StudentID] = r
	}
	return out
}
