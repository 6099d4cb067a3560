//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/skinscan/internal/bootstrap"
	"github.com/yanqian/skinscan/internal/domain/auth"
	"github.com/yanqian/skinscan/internal/domain/chatbot"
	"github.com/yanqian/skinscan/internal/domain/detection"
	"github.com/yanqian/skinscan/internal/domain/patient"
	"github.com/yanqian/skinscan/internal/infra/config"
	httpiface "github.com/yanqian/skinscan/internal/interface/http"
	"github.com/yanqian/skinscan/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideBackends,
		provideResources,
		provideAuthConfig,
		provideAuthRepository,
		providePatientRepository,
		providePatientLookup,
		provideDetectionRepository,
		provideImageStorage,
		provideClassifier,
		provideDetectionConfig,
		provideChatConfig,
		provideResponder,
		provideChatStore,
		auth.NewService,
		patient.NewService,
		detection.NewService,
		chatbot.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
