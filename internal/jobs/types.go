package jobs

type JobType string

const (
	JobPasswordResetEmail JobType = "password_reset_email"
)

// check to see if the job type is a known constant

func (t JobType) IsValid() bool {
	switch t {
	case JobPasswordResetEmail:
		return true
	default:
		return false
	}
}

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobFailed     JobStatus = "failed"
)
