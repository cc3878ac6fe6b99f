// Package services implements the business logic layer between the HTTP
// handlers and storage.
//
// ScoreService owns the roster workflow: a workbook is parsed into exam
// snapshots and stored as the active roster; results are produced on
// demand by running the scoring pipeline of the active assignment config
// over the stored raw scores. Pipelines are cached per config, and when
// memoization is enabled each one keeps an LRU of scored snapshots, so
// repeated result and export requests do not re-rank unchanged exams.
//
// HealthService probes the service's dependencies for /healthz.
package services
