package packet

// LogEntryType classifies a log entry
type LogEntryType int32

// Log entry types
const (
	LogEntrySeparator         LogEntryType = 0
	LogEntryEnterMethod       LogEntryType = 1
	LogEntryLeaveMethod       LogEntryType = 2
	LogEntryResetCallstack    LogEntryType = 3
	LogEntryMessage           LogEntryType = 100
	LogEntryWarning           LogEntryType = 101
	LogEntryError             LogEntryType = 102
	LogEntryInternalError     LogEntryType = 103
	LogEntryComment           LogEntryType = 104
	LogEntryVariableValue     LogEntryType = 105
	LogEntryCheckpoint        LogEntryType = 106
	LogEntryDebug             LogEntryType = 107
	LogEntryVerbose           LogEntryType = 108
	LogEntryFatal             LogEntryType = 109
	LogEntryConditional       LogEntryType = 110
	LogEntryAssert            LogEntryType = 111
	LogEntryText              LogEntryType = 200
	LogEntryBinary            LogEntryType = 201
	LogEntryGraphic           LogEntryType = 202
	LogEntrySource            LogEntryType = 203
	LogEntryObject            LogEntryType = 204
	LogEntryWebContent        LogEntryType = 205
	LogEntrySystem            LogEntryType = 206
	LogEntryMemoryStatistic   LogEntryType = 207
	LogEntryDatabaseResult    LogEntryType = 208
	LogEntryDatabaseStructure LogEntryType = 209
)

var logEntryTypeNames = map[LogEntryType]string{
	LogEntrySeparator:         "Separator",
	LogEntryEnterMethod:       "EnterMethod",
	LogEntryLeaveMethod:       "LeaveMethod",
	LogEntryResetCallstack:    "ResetCallstack",
	LogEntryMessage:           "Message",
	LogEntryWarning:           "Warning",
	LogEntryError:             "Error",
	LogEntryInternalError:     "InternalError",
	LogEntryComment:           "Comment",
	LogEntryVariableValue:     "VariableValue",
	LogEntryCheckpoint:        "Checkpoint",
	LogEntryDebug:             "Debug",
	LogEntryVerbose:           "Verbose",
	LogEntryFatal:             "Fatal",
	LogEntryConditional:       "Conditional",
	LogEntryAssert:            "Assert",
	LogEntryText:              "Text",
	LogEntryBinary:            "Binary",
	LogEntryGraphic:           "Graphic",
	LogEntrySource:            "Source",
	LogEntryObject:            "Object",
	LogEntryWebContent:        "WebContent",
	LogEntrySystem:            "System",
	LogEntryMemoryStatistic:   "MemoryStatistic",
	LogEntryDatabaseResult:    "DatabaseResult",
	LogEntryDatabaseStructure: "DatabaseStructure",
}

// String returns the name of the log entry type
func (t LogEntryType) String() string {
	if name, ok := logEntryTypeNames[t]; ok {
		return name
	}

	return "Unknown"
}

// ViewerID tells a consumer how to render the data of a log entry
type ViewerID int32

// Viewer ids
const (
	ViewerNone             ViewerID = -1
	ViewerTitle            ViewerID = 0
	ViewerData             ViewerID = 1
	ViewerList             ViewerID = 2
	ViewerValueList        ViewerID = 3
	ViewerInspector        ViewerID = 4
	ViewerTable            ViewerID = 5
	ViewerWeb              ViewerID = 100
	ViewerBinary           ViewerID = 200
	ViewerHTMLSource       ViewerID = 300
	ViewerJavaScriptSource ViewerID = 301
	ViewerVBScriptSource   ViewerID = 302
	ViewerPerlSource       ViewerID = 303
	ViewerSQLSource        ViewerID = 304
	ViewerINISource        ViewerID = 305
	ViewerPythonSource     ViewerID = 306
	ViewerXMLSource        ViewerID = 307
	ViewerBitmap           ViewerID = 400
	ViewerJPEG             ViewerID = 401
	ViewerIcon             ViewerID = 402
	ViewerMetafile         ViewerID = 403
)

var viewerNames = map[ViewerID]string{
	ViewerNone:             "None",
	ViewerTitle:            "Title",
	ViewerData:             "Data",
	ViewerList:             "List",
	ViewerValueList:        "ValueList",
	ViewerInspector:        "Inspector",
	ViewerTable:            "Table",
	ViewerWeb:              "Web",
	ViewerBinary:           "Binary",
	ViewerHTMLSource:       "HtmlSource",
	ViewerJavaScriptSource: "JavaScriptSource",
	ViewerVBScriptSource:   "VbScriptSource",
	ViewerPerlSource:       "PerlSource",
	ViewerSQLSource:        "SqlSource",
	ViewerINISource:        "IniSource",
	ViewerPythonSource:     "PythonSource",
	ViewerXMLSource:        "XmlSource",
	ViewerBitmap:           "Bitmap",
	ViewerJPEG:             "Jpeg",
	ViewerIcon:             "Icon",
	ViewerMetafile:         "Metafile",
}

// String returns the name of the viewer
func (v ViewerID) String() string {
	if name, ok := viewerNames[v]; ok {
		return name
	}

	return "Unknown"
}

// WatchType is the kind of value a watch holds
type WatchType int32

// Watch types
const (
	WatchChar WatchType = iota
	WatchString
	WatchInteger
	WatchFloat
	WatchBoolean
	WatchAddress
	WatchTimestamp
	WatchObject
)

// String returns the name of the watch type
func (t WatchType) String() string {
	switch t {
	case WatchChar:
		return "Char"
	case WatchString:
		return "String"
	case WatchInteger:
		return "Integer"
	case WatchFloat:
		return "Float"
	case WatchBoolean:
		return "Boolean"
	case WatchAddress:
		return "Address"
	case WatchTimestamp:
		return "Timestamp"
	case WatchObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// ProcessFlowType is the kind of process flow marker
type ProcessFlowType int32

// Process flow types
const (
	FlowEnterMethod ProcessFlowType = iota
	FlowLeaveMethod
	FlowEnterThread
	FlowLeaveThread
	FlowEnterProcess
	FlowLeaveProcess
)

// String returns the name of the process flow type
func (t ProcessFlowType) String() string {
	switch t {
	case FlowEnterMethod:
		return "EnterMethod"
	case FlowLeaveMethod:
		return "LeaveMethod"
	case FlowEnterThread:
		return "EnterThread"
	case FlowLeaveThread:
		return "LeaveThread"
	case FlowEnterProcess:
		return "EnterProcess"
	case FlowLeaveProcess:
		return "LeaveProcess"
	default:
		return "Unknown"
	}
}

// ControlCommandType selects what a control command clears
type ControlCommandType int32

// Control command types
const (
	CommandClearLog ControlCommandType = iota
	CommandClearWatches
	CommandClearAutoViews
	CommandClearAll
	CommandClearProcessFlow
)

// String returns the name of the control command type
func (t ControlCommandType) String() string {
	switch t {
	case CommandClearLog:
		return "ClearLog"
	case CommandClearWatches:
		return "ClearWatches"
	case CommandClearAutoViews:
		return "ClearAutoViews"
	case CommandClearAll:
		return "ClearAll"
	case CommandClearProcessFlow:
		return "ClearProcessFlow"
	default:
		return "Unknown"
	}
}
