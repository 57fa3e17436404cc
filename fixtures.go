package main

import (
	"crosspointx/internal/back"
	"crosspointx/internal/config"
)

func loadFixtures() error {
	conf, err := config.NewFromUserConfigDir()
	if err != nil {
		return err
	}

	b, err := back.New(conf.SQLDriver, conf.SQLDSN, conf)
	if err != nil {
		return err
	}

	return b.LoadFixtures()
}
