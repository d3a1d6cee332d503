// Package training tracks the pool of admin-labeled records awaiting a
// retrain and orchestrates retrain runs against an external trainer.
package training
