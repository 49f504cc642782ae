package evaluationqueue

// QueueName is the River queue reconciliation jobs run on.
const QueueName = "evaluation"

// ReconcileJob repairs tree leaves from the lock ledger and then corrects
// every drifted stored total.
type ReconcileJob struct {
	// Reason is recorded in the logs; periodic runs leave it as "periodic".
	Reason string `json:"reason"`
}

// Kind returns the job type identifier for River
func (ReconcileJob) Kind() string { return "reconcile_scores" }
