package config

type WorkerKeyStruct struct {
	PersistAttemptsQueue string
	PersistRewardsQueue  string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAttemptsQueue: "persist_attempts_queue",
	PersistRewardsQueue:  "persist_rewards_queue",
}
