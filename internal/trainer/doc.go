// Package trainer shells out to the external fine-tuning binary that updates
// the hoax classification model.
package trainer
