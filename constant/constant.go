package constant

import "strings"

type VideoStatus string

const (
	VideoStatusUploading  VideoStatus = "UPLOADING"
	VideoStatusProcessing VideoStatus = "PROCESSING"
	VideoStatusReady      VideoStatus = "READY"
	VideoStatusFailed     VideoStatus = "FAILED"
)

// videoTransitions lists the statuses each status may move to. Transitions only go forward.
var videoTransitions = map[VideoStatus][]VideoStatus{
	VideoStatusUploading:  {VideoStatusProcessing, VideoStatusFailed},
	VideoStatusProcessing: {VideoStatusReady, VideoStatusFailed},
}

func (s VideoStatus) String() string {
	return string(s)
}

func (s VideoStatus) IsTerminal() bool {
	return s == VideoStatusReady || s == VideoStatusFailed
}

func (s VideoStatus) CanTransitionTo(next VideoStatus) bool {
	for _, allowed := range videoTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Predecessors returns every status that may transition into s.
func (s VideoStatus) Predecessors() []VideoStatus {
	var from []VideoStatus
	for status, targets := range videoTransitions {
		for _, target := range targets {
			if target == s {
				from = append(from, status)
			}
		}
	}
	return from
}

// ProgressStatus is the lower-case status reported on the upload progress side channel.
func (s VideoStatus) ProgressStatus() ProgressStatus {
	return ProgressStatus(strings.ToLower(string(s)))
}

type Reaction string

const (
	ReactionLike    Reaction = "LIKE"
	ReactionDislike Reaction = "DISLIKE"
)

func (r Reaction) Valid() bool {
	return r == ReactionLike || r == ReactionDislike
}

func (r Reaction) Opposite() Reaction {
	if r == ReactionLike {
		return ReactionDislike
	}
	return ReactionLike
}

// CounterColumn is the denormalized videos column tracking rows with this reaction.
func (r Reaction) CounterColumn() string {
	if r == ReactionLike {
		return "like_count"
	}
	return "dislike_count"
}

type ProgressStatus string

const (
	ProgressStatusUploading  ProgressStatus = "uploading"
	ProgressStatusProcessing ProgressStatus = "processing"
	ProgressStatusReady      ProgressStatus = "ready"
	ProgressStatusFailed     ProgressStatus = "failed"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusFailed     JobStatus = "FAILED"
	JobStatusCompleted  JobStatus = "COMPLETED"
)

type JobType string

const (
	JobTypeVideoProcessing JobType = "video_processing"
)

const EntityTypeVideo = "video"

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}
