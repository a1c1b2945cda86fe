package services

// ProcessImportJob exposes the worker's per-job step to the external tests.
var ProcessImportJob = (*ImportJobQueue).process
