// Package filter implements image filters on top of the region threader.
//
// Every filter embeds Base, which runs the same sequence on Update: check
// that each required input is set and covers the output region, allocate
// the output, split the output region across at most NumberOfThreads
// workers, and record an ExecutionReport. Input problems are reported as a
// *ConfigError before any worker starts. A worker error is returned as is
// once all workers have finished, and the previous output is kept.
package filter
