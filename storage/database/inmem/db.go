package inmemdb

// DB is a process-local store backing tests and local development.
type DB struct {
	user      *userTable
	vocab     *vocabTable
	study     *studyTable
	video     *videoTable
	forum     *forumTable
	messaging *messagingTable
}

func NewDB() *DB {
	return &DB{
		user:      newUserTable(),
		vocab:     newVocabTable(),
		study:     newStudyTable(),
		video:     newVideoTable(),
		forum:     newForumTable(),
		messaging: newMessagingTable(),
	}
}

type sequence struct {
	n int
}

func (s *sequence) next() int {
	s.n++
	return s.n
}
