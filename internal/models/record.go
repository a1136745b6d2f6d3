package models

// Report is the analysis worklist shared between passes. The JSON keys match
// the file the catalog tooling has always produced.
type Report struct {
	Flagged                   []string `json:"cloud_slice_courses"`
	Unflagged                 []string `json:"non_cloud_slice_courses"`
	WithInstructions          []string `json:"courses_with_instructions"`
	UnflaggedWithInstructions []string `json:"non_cloud_with_instructions"`
}

// Override forces a course into the flagged or unflagged set.
type Override struct {
	CourseID       string `csv:"course id"`
	RequiresPortal bool   `csv:"requires portal"`
}

// CourseSummary is one row of the analysis CSV export.
type CourseSummary struct {
	CourseID        string `csv:"course id"`
	RequiresPortal  bool   `csv:"requires portal"`
	HasInstructions bool   `csv:"has instructions"`
	PortalMentions  int    `csv:"portal mentions"`
}

// FlagUpdate sets the portal flag on one lab document.
type FlagUpdate struct {
	CourseID       string `bson:"id"`
	RequiresPortal bool   `bson:"requiresAzurePortal"`
}
