package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	echoapi "github.com/sprakportal/backend/apps/api/echo"
	"github.com/sprakportal/backend/core"
	"github.com/sprakportal/backend/core/forum"
	"github.com/sprakportal/backend/core/messaging"
	"github.com/sprakportal/backend/core/study"
	"github.com/sprakportal/backend/core/user"
	"github.com/sprakportal/backend/core/video"
	"github.com/sprakportal/backend/core/vocab"
	emailsvc "github.com/sprakportal/backend/services/email"
	filesvc "github.com/sprakportal/backend/services/files"
	logsvc "github.com/sprakportal/backend/services/logger"
	"github.com/sprakportal/backend/storage/database"
	sqlxrepos "github.com/sprakportal/backend/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	zl, err := zap.NewProduction()
	if err != nil {
		fmt.Printf("setting up logger: %v", err)
		os.Exit(1)
	}
	defer zl.Sync() //nolint:errcheck
	logger := logsvc.NewRollbarLogger(zl, conf)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	store, err := filesvc.NewLocalStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up media storage: %v", err), err)
	}

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, conf, validate)
	vocabSvc := vocab.NewService(sqlxrepos.NewVocabRepository(db), validate)
	studySvc := study.NewService(sqlxrepos.NewStudyRepository(db), validate)
	videoSvc := video.NewService(sqlxrepos.NewVideoRepository(db), validate)
	forumSvc := forum.NewService(sqlxrepos.NewForumRepository(db), validate)
	msgSvc := messaging.NewService(sqlxrepos.NewMessagingRepository(db), validate)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.ParseEmailTemplates(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:         conf,
			Logger:       logger,
			UserSvc:      usrSvc,
			VocabSvc:     vocabSvc,
			StudySvc:     studySvc,
			VideoSvc:     videoSvc,
			ForumSvc:     forumSvc,
			MessagingSvc: msgSvc,
			MailSvc:      mailSvc,
			FileStore:    store,
			Validate:     validate,
			Translator:   translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB, conf); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
