package scheduler

// ExportedRunScan exposes the private runScan method for external tests.
func (s *Scheduler) ExportedRunScan() {
	s.runScan()
}
