// Package classifier assigns category, priority, summary and routing queue to
// a support request by asking a hosted language model.
//
// Classification never fails from the caller's point of view. A missing API
// key, a model or network error, a response that is not JSON, or JSON that
// does not match the fixed four-field schema all yield [Fallback]. There is
// exactly one model call per ticket and no retry.
package classifier
