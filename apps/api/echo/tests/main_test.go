package tests

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
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
	inmemdb "github.com/sprakportal/backend/storage/database/inmem"
)

var (
	conf *core.Config
	app  echoapi.Server

	db      *inmemdb.DB
	usrRepo user.Repository

	usrSvc   *user.Service
	vocabSvc *vocab.Service
	studySvc *study.Service
	videoSvc *video.Service
	forumSvc *forum.Service
	msgSvc   *messaging.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "api-tests")
	if err != nil {
		fmt.Printf("os.MkdirTemp(): %v", err)
		os.Exit(1)
	}
	defer os.RemoveAll(tmp)

	conf = &core.Config{
		Debug:           true,
		TestMode:        true,
		AppName:         "Språkportalen",
		SecretKey:       []byte("secret-test-key"),
		WorkDir:         tmp,
		MediaRoot:       "media",
		ContactEmail:    "kontakt@test.se",
		FrontendBaseURL: "http://localhost:3000",
	}
	conf.Server.JWTExpirationDelta = time.Hour
	conf.Server.JWTRefreshExpirationDelta = 2 * time.Hour

	logger := logsvc.NewRollbarLogger(zap.NewNop(), conf)

	eng := en.New()
	translator, _ := ut.New(eng, eng).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up DB & repos
	db = inmemdb.NewDB()
	usrRepo = inmemdb.NewUserRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	store, err := filesvc.NewLocalStorage(conf)
	if err != nil {
		fmt.Printf("filesvc.NewLocalStorage(): %v", err)
		os.Exit(1)
	}
	usrSvc = user.NewService(usrRepo, mailSvc, conf, validate)
	vocabSvc = vocab.NewService(inmemdb.NewVocabRepository(db), validate)
	studySvc = study.NewService(inmemdb.NewStudyRepository(db), validate)
	videoSvc = video.NewService(inmemdb.NewVideoRepository(db), validate)
	forumSvc = forum.NewService(inmemdb.NewForumRepository(db), validate)
	msgSvc = messaging.NewService(inmemdb.NewMessagingRepository(db), validate)

	// set up server
	app = echoapi.NewServer(
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

	os.Exit(m.Run())
}
