package health

type MockHealthChecker struct {
	DbOk bool
}

func (m MockHealthChecker) IsDatabaseOK() (string, bool) {
	if !m.DbOk {
		return "database ping error", false
	}
	return "ok", true
}
