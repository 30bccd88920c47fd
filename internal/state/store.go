package state

// Postgres exposes the package-level database functions as a value that can
// be handed to the service.
type Postgres struct{}

func (Postgres) NextCommit() (int64, error) { return IncrementCommitNumber() }

func (Postgres) SaveState(rec StateRecord) error {
	_, err := SaveContractState(rec)
	return err
}

func (Postgres) LoadState(address string) (*StateRecord, error) {
	return LoadLatestContractState(address)
}

func (Postgres) RecordOperation(rec OperationRecord) error { return RecordOperation(rec) }

func (Postgres) Healthy() error { return TestDBConnection() }

func (Postgres) RecentOperations(limit int) ([]OperationRecord, error) {
	return GetRecentOperations(limit)
}

func (Postgres) UnemittedOperations(limit int) ([]OperationRecord, error) {
	return GetUnemittedOperations(limit)
}

func (Postgres) OperationByID(id string) (*OperationRecord, error) { return GetOperationByID(id) }

func (Postgres) OperationSummary() (*OperationSummary, error) { return GetOperationSummary() }
