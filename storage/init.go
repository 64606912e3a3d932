package storage

import (
	"EstateLink/storage/database"
	"EstateLink/storage/mq"
	"EstateLink/storage/redis"
)

// Init brings up the whole storage layer in dependency order.
func Init() error {
	if err := database.Init(); err != nil {
		return err
	}

	if err := redis.Init(); err != nil {
		return err
	}

	if err := mq.Init(); err != nil {
		return err
	}

	return nil
}
