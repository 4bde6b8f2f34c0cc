package bridge

import (
	"encoding/json"

	"inspectd/internal/app/packet"
)

var logEntryTypes = map[string]packet.LogEntryType{
	"separator":         packet.LogEntrySeparator,
	"sep":               packet.LogEntrySeparator,
	"entermethod":       packet.LogEntryEnterMethod,
	"enter":             packet.LogEntryEnterMethod,
	"leavemethod":       packet.LogEntryLeaveMethod,
	"leave":             packet.LogEntryLeaveMethod,
	"resetcallstack":    packet.LogEntryResetCallstack,
	"reset":             packet.LogEntryResetCallstack,
	"message":           packet.LogEntryMessage,
	"msg":               packet.LogEntryMessage,
	"info":              packet.LogEntryMessage,
	"log":               packet.LogEntryMessage,
	"warning":           packet.LogEntryWarning,
	"warn":              packet.LogEntryWarning,
	"error":             packet.LogEntryError,
	"err":               packet.LogEntryError,
	"internalerror":     packet.LogEntryInternalError,
	"internal":          packet.LogEntryInternalError,
	"comment":           packet.LogEntryComment,
	"note":              packet.LogEntryComment,
	"variablevalue":     packet.LogEntryVariableValue,
	"variable":          packet.LogEntryVariableValue,
	"var":               packet.LogEntryVariableValue,
	"checkpoint":        packet.LogEntryCheckpoint,
	"check":             packet.LogEntryCheckpoint,
	"debug":             packet.LogEntryDebug,
	"dbg":               packet.LogEntryDebug,
	"verbose":           packet.LogEntryVerbose,
	"trace":             packet.LogEntryVerbose,
	"fatal":             packet.LogEntryFatal,
	"critical":          packet.LogEntryFatal,
	"conditional":       packet.LogEntryConditional,
	"assert":            packet.LogEntryAssert,
	"assertion":         packet.LogEntryAssert,
	"text":              packet.LogEntryText,
	"binary":            packet.LogEntryBinary,
	"bin":               packet.LogEntryBinary,
	"graphic":           packet.LogEntryGraphic,
	"image":             packet.LogEntryGraphic,
	"source":            packet.LogEntrySource,
	"code":              packet.LogEntrySource,
	"object":            packet.LogEntryObject,
	"obj":               packet.LogEntryObject,
	"json":              packet.LogEntryObject,
	"webcontent":        packet.LogEntryWebContent,
	"web":               packet.LogEntryWebContent,
	"html":              packet.LogEntryWebContent,
	"system":            packet.LogEntrySystem,
	"sys":               packet.LogEntrySystem,
	"memorystatistic":   packet.LogEntryMemoryStatistic,
	"memorystat":        packet.LogEntryMemoryStatistic,
	"memory":            packet.LogEntryMemoryStatistic,
	"databaseresult":    packet.LogEntryDatabaseResult,
	"dbresult":          packet.LogEntryDatabaseResult,
	"databasestructure": packet.LogEntryDatabaseStructure,
	"dbstructure":       packet.LogEntryDatabaseStructure,
}

var viewerIDs = map[string]packet.ViewerID{
	"none":             packet.ViewerNone,
	"title":            packet.ViewerTitle,
	"data":             packet.ViewerData,
	"text":             packet.ViewerData,
	"list":             packet.ViewerList,
	"valuelist":        packet.ViewerValueList,
	"keyvalue":         packet.ViewerValueList,
	"inspector":        packet.ViewerInspector,
	"table":            packet.ViewerTable,
	"web":              packet.ViewerWeb,
	"binary":           packet.ViewerBinary,
	"hex":              packet.ViewerBinary,
	"htmlsource":       packet.ViewerHTMLSource,
	"html":             packet.ViewerHTMLSource,
	"javascriptsource": packet.ViewerJavaScriptSource,
	"javascript":       packet.ViewerJavaScriptSource,
	"js":               packet.ViewerJavaScriptSource,
	"json":             packet.ViewerJavaScriptSource,
	"vbscriptsource":   packet.ViewerVBScriptSource,
	"vbscript":         packet.ViewerVBScriptSource,
	"perlsource":       packet.ViewerPerlSource,
	"perl":             packet.ViewerPerlSource,
	"sqlsource":        packet.ViewerSQLSource,
	"sql":              packet.ViewerSQLSource,
	"inisource":        packet.ViewerINISource,
	"ini":              packet.ViewerINISource,
	"pythonsource":     packet.ViewerPythonSource,
	"python":           packet.ViewerPythonSource,
	"py":               packet.ViewerPythonSource,
	"xmlsource":        packet.ViewerXMLSource,
	"xml":              packet.ViewerXMLSource,
	"bitmap":           packet.ViewerBitmap,
	"bmp":              packet.ViewerBitmap,
	"jpeg":             packet.ViewerJPEG,
	"jpg":              packet.ViewerJPEG,
	"icon":             packet.ViewerIcon,
	"ico":              packet.ViewerIcon,
	"metafile":         packet.ViewerMetafile,
}

var watchTypes = map[string]packet.WatchType{
	"char":      packet.WatchChar,
	"chr":       packet.WatchChar,
	"string":    packet.WatchString,
	"str":       packet.WatchString,
	"text":      packet.WatchString,
	"integer":   packet.WatchInteger,
	"int":       packet.WatchInteger,
	"long":      packet.WatchInteger,
	"float":     packet.WatchFloat,
	"double":    packet.WatchFloat,
	"decimal":   packet.WatchFloat,
	"number":    packet.WatchFloat,
	"boolean":   packet.WatchBoolean,
	"bool":      packet.WatchBoolean,
	"address":   packet.WatchAddress,
	"addr":      packet.WatchAddress,
	"pointer":   packet.WatchAddress,
	"timestamp": packet.WatchTimestamp,
	"datetime":  packet.WatchTimestamp,
	"date":      packet.WatchTimestamp,
	"time":      packet.WatchTimestamp,
	"object":    packet.WatchObject,
	"obj":       packet.WatchObject,
	"json":      packet.WatchObject,
}

var processFlowTypes = map[string]packet.ProcessFlowType{
	"entermethod":  packet.FlowEnterMethod,
	"enter":        packet.FlowEnterMethod,
	"methodenter":  packet.FlowEnterMethod,
	"leavemethod":  packet.FlowLeaveMethod,
	"leave":        packet.FlowLeaveMethod,
	"methodleave":  packet.FlowLeaveMethod,
	"exit":         packet.FlowLeaveMethod,
	"enterthread":  packet.FlowEnterThread,
	"threadenter":  packet.FlowEnterThread,
	"threadstart":  packet.FlowEnterThread,
	"leavethread":  packet.FlowLeaveThread,
	"threadleave":  packet.FlowLeaveThread,
	"threadexit":   packet.FlowLeaveThread,
	"enterprocess": packet.FlowEnterProcess,
	"processenter": packet.FlowEnterProcess,
	"processstart": packet.FlowEnterProcess,
	"start":        packet.FlowEnterProcess,
	"leaveprocess": packet.FlowLeaveProcess,
	"processleave": packet.FlowLeaveProcess,
	"processexit":  packet.FlowLeaveProcess,
	"stop":         packet.FlowLeaveProcess,
}

var controlCommandTypes = map[string]packet.ControlCommandType{
	"clearlog":         packet.CommandClearLog,
	"clear":            packet.CommandClearLog,
	"log":              packet.CommandClearLog,
	"clearwatches":     packet.CommandClearWatches,
	"watches":          packet.CommandClearWatches,
	"clearautoviews":   packet.CommandClearAutoViews,
	"autoviews":        packet.CommandClearAutoViews,
	"clearall":         packet.CommandClearAll,
	"all":              packet.CommandClearAll,
	"clearprocessflow": packet.CommandClearProcessFlow,
	"clearflow":        packet.CommandClearProcessFlow,
	"processflow":      packet.CommandClearProcessFlow,
	"flow":             packet.CommandClearProcessFlow,
}

// LogEntryType resolves a name, synonym or numeric code. Unknown input
// yields LogEntryMessage.
func LogEntryType(v any) packet.LogEntryType {
	if code, ok := number(v); ok {
		if t := packet.LogEntryType(code); t.String() != "Unknown" {
			return t
		}

		return packet.LogEntryMessage
	}

	if t, ok := lookup(logEntryTypes, v); ok {
		return t
	}

	return packet.LogEntryMessage
}

// ViewerID resolves a viewer. Without a usable value it picks the data
// viewer when there is data to show and the title viewer otherwise.
func ViewerID(v any, hasData bool) packet.ViewerID {
	if code, ok := number(v); ok {
		if id := packet.ViewerID(code); id.String() != "Unknown" {
			return id
		}
	}

	if id, ok := lookup(viewerIDs, v); ok {
		return id
	}

	if hasData {
		return packet.ViewerData
	}

	return packet.ViewerTitle
}

// WatchType resolves an explicit watch type or infers one from the value
func WatchType(v any, value any) packet.WatchType {
	if code, ok := number(v); ok {
		if t := packet.WatchType(code); t.String() != "Unknown" {
			return t
		}

		return packet.WatchString
	}

	if v != nil {
		if t, ok := lookup(watchTypes, v); ok {
			return t
		}

		return packet.WatchString
	}

	return InferWatchType(value)
}

// InferWatchType derives a watch type from a decoded JSON value
func InferWatchType(value any) packet.WatchType {
	switch t := value.(type) {
	case json.Number:
		if _, err := t.Int64(); err == nil {
			return packet.WatchInteger
		}

		return packet.WatchFloat
	case float64:
		if t == float64(int64(t)) {
			return packet.WatchInteger
		}

		return packet.WatchFloat
	case bool:
		return packet.WatchBoolean
	case map[string]any, []any:
		return packet.WatchObject
	default:
		return packet.WatchString
	}
}

// ProcessFlowType resolves a flow type. Unknown input yields FlowEnterMethod.
func ProcessFlowType(v any) packet.ProcessFlowType {
	if code, ok := number(v); ok {
		if t := packet.ProcessFlowType(code); t.String() != "Unknown" {
			return t
		}

		return packet.FlowEnterMethod
	}

	if t, ok := lookup(processFlowTypes, v); ok {
		return t
	}

	return packet.FlowEnterMethod
}

// ControlCommandType resolves a command. Unknown input yields CommandClearLog.
func ControlCommandType(v any) packet.ControlCommandType {
	if code, ok := number(v); ok {
		if t := packet.ControlCommandType(code); t.String() != "Unknown" {
			return t
		}

		return packet.CommandClearLog
	}

	if t, ok := lookup(controlCommandTypes, v); ok {
		return t
	}

	return packet.CommandClearLog
}

func lookup[T any](names map[string]T, v any) (T, bool) {
	var zero T

	s, ok := v.(string)
	if !ok {
		return zero, false
	}

	t, ok := names[normalize(s)]

	return t, ok
}

func number(v any) (int32, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}

	i, err := n.Int64()
	if err != nil {
		return 0, false
	}

	return int32(i), true
}
