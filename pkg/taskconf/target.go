package taskconf

// targetTypes maps a source type to the system store it syncs into.
var targetTypes = map[SourceType]TargetType{
	SourceMySQL:      TargetSystemMySQL,
	SourceClickHouse: TargetSystemClickHouse,
	SourceMinIO:      TargetSystemMinIO,
}

// DeriveTargetType returns the target type for a source type. Unmapped types,
// csv included, fall back to system_mysql.
func DeriveTargetType(sourceType SourceType) TargetType {
	if t, ok := targetTypes[sourceType]; ok {
		return t
	}
	return TargetSystemMySQL
}
