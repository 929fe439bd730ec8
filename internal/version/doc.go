// Package version turns a settled bump decision into a concrete version.
//
// Computation is a fixed four-stage pipeline, each stage consuming the
// previous stage's output:
//
//  1. base bump: increment the numeric core, or enter pre-release space
//     for a forced module without commits
//  2. pre-release numbering: continue or restart the <identifier>.<n> counter
//  3. ecosystem snapshot: append the snapshot suffix once
//  4. build metadata: replace the +metadata part with the run's value
//
// Versions are parsed strictly; an on-disk version that is not valid SemVer
// is an error, never a guess.
package version
