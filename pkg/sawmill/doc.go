// Package sawmill classifies failing CI build logs against a hierarchical
// failure taxonomy and attributes failures to candidate commits.
//
// Quick start:
//
//	s, err := sawmill.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	analysis := s.Analyze(rawLog, []sawmill.Commit{
//	    {SHA: "abc1234", Author: "dev@example.com", ChangedFiles: []string{"auth.py"}},
//	})
//	fmt.Println(analysis.Label, analysis.Confidence)
//
// The Sawmill instance is safe for concurrent use. Create once, reuse across
// requests. See the README for full documentation.
package sawmill
