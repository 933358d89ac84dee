// Package process terminates the browser processes started for math
// rendering, including the helper processes Chrome forks.
package process
