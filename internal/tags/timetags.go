package tags

// timeTagNames holds the group-less names printed by `exiftool -list -time:all`.
var timeTagNames = toSet(
	"ABDate", "AccessDate", "Acknowledged", "AcquisitionTime", "AcquisitionTimeDay",
	"AcquisitionTimeMonth", "AcquisitionTimeStamp", "AcquisitionTimeYear", "AcquisitionTimeYearMonth",
	"AcquisitionTimeYearMonthDay", "AppleMailDateReceived", "AppleMailDateSent", "ArtworkCircaDateCreated",
	"ArtworkDateCreated", "AudioModDate", "BackupTime", "Birthday", "BroadcastDate", "BroadcastTime",
	"BuildDate", "CFEGFlashTimeStamp", "CalibrationDateTime", "CameraDateTime", "CameraPoseTimestamp",
	"CaptionsDateTimeStamps", "CircaDateCreated", "ClassifyingCountryCodingMethodDate", "ClipCreationDateTime",
	"CommentTime", "ContainerLastModifyDate", "ContentCreateDate", "ContractDateTime", "CopyrightYear",
	"CoverDate", "CreateDate", "CreationDate", "CreationTime", "DataCreateDate", "DataModifyDate",
	"Date", "Date1", "Date2", "DateAccessed", "DateAcquired", "DateArchived", "DateCompleted",
	"DateCreated", "DateDisplayFormat", "DateEncoded", "DateIdentified", "DateImported", "DateLastSaved",
	"DateModified", "DatePictureTaken", "DatePurchased", "DateReceived", "DateRecieved", "DateReleased",
	"DateSent", "DateTagged", "DateTime", "DateTime1", "DateTime2", "DateTimeCompleted", "DateTimeCreated",
	"DateTimeDigitized", "DateTimeDropFrameFlag", "DateTimeDue", "DateTimeEmbeddedFlag", "DateTimeEnd",
	"DateTimeGenerated", "DateTimeKind", "DateTimeOriginal", "DateTimeRate", "DateTimeStamp",
	"DateTimeStart", "DateTimeUTC", "DateVisited", "DateWritten", "DayOfWeek", "DaylightSavings",
	"DeclassificationDate", "DeprecatedOn", "DerivedFromLastModifyDate", "DestinationCity",
	"DestinationDST", "DigitalCreationDate", "DigitalCreationDateTime", "DigitalCreationTime",
	"EarthPosTimestamp", "EmbargoDate", "EncodeTime", "EncodingTime", "EndTime", "EventAbsoluteDuration",
	"EventDate", "EventDay", "EventEarliestDate", "EventEndDayOfYear", "EventEndTimecodeOffset",
	"EventLatestDate", "EventMonth", "EventStartDayOfYear", "EventStartTime", "EventStartTimecodeOffset",
	"EventTime", "EventVerbatimEventDate", "EventYear", "ExceptionDateTimes", "ExclusivityEndDate",
	"ExpirationDate", "ExpirationTime", "ExtensionCreateDate", "ExtensionModifyDate", "FileAccessDate",
	"FileCreateDate", "FileInodeChangeDate", "FileModifyDate", "FilmTestResult", "FirstPhotoDate",
	"FirstPublicationDate", "FormatVersionTime", "GPSDateStamp", "GPSDateTime", "GPSDateTimeRaw",
	"GPSTimeStamp", "HistoryWhen", "HometownCity", "HometownDST", "HumanObservationDay",
	"HumanObservationEarliestDate", "HumanObservationEndDayOfYear", "HumanObservationEventDate",
	"HumanObservationEventTime", "HumanObservationLatestDate", "HumanObservationMonth",
	"HumanObservationStartDayOfYear", "HumanObservationVerbatimEventDate", "HumanObservationYear",
	"IPTCLastEdited", "ImageProcessingFileDateCreated", "IngredientsLastModifyDate", "KillDateDate",
	"LastBackupDate", "LastPhotoDate", "LastPrinted", "LastUpdate", "LayerModifyDates", "LicenseEndDate",
	"LicenseStartDate", "LicenseTransactionDate", "LocalCreationDateTime", "LocalEndDateTime",
	"LocalEventEndDateTime", "LocalEventStartDateTime", "LocalFestivalDateTime", "LocalLastModifyDate",
	"LocalModifyDate", "LocalStartDateTime", "LocalUserDateTime", "LocationDate",
	"MDItemContentCreationDate", "MDItemContentCreationDateRanking", "MDItemContentCreationDate_Ranking",
	"MDItemContentModificationDate", "MDItemDateAdded", "MDItemDateAdded_Ranking", "MDItemDownloadedDate",
	"MDItemFSContentChangeDate", "MDItemFSCreationDate", "MDItemGPSDateStamp", "MDItemInterestingDateRanking",
	"MDItemInterestingDate_Ranking", "MDItemLastUsedDate", "MDItemMailDateReceived_Ranking", "MDItemTimestamp",
	"MDItemUsedDates", "MDItemUserDownloadedDate", "MachineObservationDay", "MachineObservationEarliestDate",
	"MachineObservationEndDayOfYear", "MachineObservationEventDate", "MachineObservationEventTime",
	"MachineObservationLatestDate", "MachineObservationMonth", "MachineObservationStartDayOfYear",
	"MachineObservationVerbatimEventDate", "MachineObservationYear", "ManagedFromLastModifyDate",
	"ManifestReferenceLastModifyDate", "ManufactureDate", "ManufactureDate1", "ManufactureDate2",
	"MaterialAbsoluteDuration", "MaterialEndTimecodeOffset", "MeasurementDeterminedDate", "MediaCreateDate",
	"MediaModifyDate", "MediaOriginalBroadcastDateTime", "MetadataDate", "MetadataLastEdited",
	"MetadataModDate", "MinoltaDate", "MinoltaTime", "ModDate", "ModificationDate", "ModifyDate", "Month",
	"MonthDayCreated", "MoonPhase", "NikonDateTime", "Now", "ON1_SettingsMetadataCreated",
	"ON1_SettingsMetadataModified", "ON1_SettingsMetadataTimestamp", "ObjectCountryCodingMethodDate",
	"ObservationDate", "ObservationDateEnd", "ObservationTime", "ObservationTimeEnd", "OffSaleDateDate",
	"OffsetTime", "OffsetTimeDigitized", "OffsetTimeOriginal", "OnSaleDateDate", "OptionEndDate",
	"OriginalCreateDateTime", "OriginalReleaseTime", "OriginalReleaseYear", "OtherDate1", "OtherDate2",
	"OtherDate3", "PDBCreateDate", "PDBModifyDate", "PackageLastModifyDate", "PanasonicDateTime",
	"PatientBirthDate", "PaymentDueDateTime", "PhysicalMediaLength", "PlanePoseTimestamp", "PoseTimestamp",
	"PowerUpTime", "PreviewDate", "PreviewDateTime", "ProducedDate", "ProductionDate", "ProfileDateTime",
	"PublicationDateDate", "PublicationDisplayDateDate", "PublicationEventDate", "PublishDate",
	"PublishDateStart", "RecordedDate", "RecordingTime", "RecordingTimeDay", "RecordingTimeMonth",
	"RecordingTimeYear", "RecordingTimeYearMonth", "RecordingTimeYearMonthDay", "RecurrenceDateTimes",
	"RecurrenceRule", "ReelTimecode", "ReferenceDate", "RegionInfoDateRegionsValid", "RegisterCreationTime",
	"RegisterItemStatusChangeDateTime", "RegisterReleaseDateTime", "RegisterUserTime",
	"RelationshipEstablishedDate", "ReleaseDate", "ReleaseDateDay", "ReleaseDateMonth", "ReleaseDateYear",
	"ReleaseDateYearMonth", "ReleaseDateYearMonthDay", "ReleaseTime", "RenditionOfLastModifyDate",
	"RevisionDate", "RicohDate", "RightsStartDateTime", "RightsStopDateTime", "RootDirectoryCreateDate",
	"SMPTE12MUserDateTime", "SMPTE309MUserDateTime", "SampleDateTime", "ScanDate",
	"ScanSoftwareRevisionDate", "SeriesDateTime", "SettingDateTime", "ShotDate", "SigningDate",
	"SonyDateTime", "SonyDateTime2", "SourceDate", "SourceModified", "StartTime", "StartTimecode",
	"StartTimecodeRelativeToReference", "StorageFormatDate", "StorageFormatTime", "StudyDateTime",
	"SubSecCreateDate", "SubSecDateTimeOriginal", "SubSecModifyDate", "SubSecTime", "SubSecTimeDigitized",
	"SubSecTimeOriginal", "TaggingTime", "TemporalCoverageFrom", "TemporalCoverageTo", "ThumbnailDateTime",
	"Time", "Time1", "Time2", "TimeAndDate", "TimeCreated", "TimeSent", "TimeStamp", "TimeStamp1",
	"TimeStampList", "TimeZone", "TimeZone2", "TimeZoneCity", "TimeZoneCode", "TimeZoneDST", "TimeZoneInfo",
	"TimeZoneURL", "TimecodeCreationDateTime", "TimecodeEndDateTime", "TimecodeEventEndDateTime",
	"TimecodeEventStartDateTime", "TimecodeLastModifyDate", "TimecodeModifyDate", "TimecodeStartDateTime",
	"TimezoneID", "TimezoneName", "TimezoneOffsetFrom", "TimezoneOffsetTo", "TrackCreateDate",
	"TrackModifyDate", "TransformCreateDate", "TransformModifyDate", "UTCEndDateTime", "UTCEventEndDateTime",
	"UTCEventStartDateTime", "UTCInstantDateTime", "UTCLastModifyDate", "UTCStartDateTime",
	"UTCUserDateTime", "UnknownDate", "VersionCreateDate", "VersionModifyDate", "VersionsEventWhen",
	"VersionsModifyDate", "VideoModDate", "VolumeCreateDate", "VolumeEffectiveDate", "VolumeExpirationDate",
	"VolumeModifyDate", "WorldTimeLocation", "XAttrAppleMailDateReceived", "XAttrAppleMailDateSent",
	"XAttrLastUsedDate", "XAttrMDItemDownloadedDate", "Year", "YearCreated", "ZipModifyDate",
)

// Groups whose tags are dates no matter their name.
var timeGroups = toSet(GroupSystem, GroupInferred)

func toSet(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// IsTimeTag reports whether key names a date/time tag. Keys may come with or
// without their group ("ExifIFD:CreateDate" or "CreateDate").
func IsTimeTag(key string) bool {
	if key == "" {
		return false
	}
	group, name := SplitKey(key)
	if group != "" {
		if _, ok := timeGroups[group]; ok {
			return true
		}
	}
	_, ok := timeTagNames[name]
	return ok
}
