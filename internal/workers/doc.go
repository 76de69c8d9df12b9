// Package workers determines worker pool sizes in containerized environments.
//
// runtime.NumCPU() reports the host CPU count and ignores cgroup limits;
// GOMAXPROCS (Go 1.19+) is set from the container limit. The helpers here size
// pools from GOMAXPROCS with a per-workload multiplier and honor the
// CRAWL_WORKERS environment variable as an operator override.
package workers
