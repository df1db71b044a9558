package consumer

// supportSource is the fixed prelude of every generated binding file: the
// error wrapper, the result type and the three capability protocols.
const supportSource = `// Code generated by ffigen. DO NOT EDIT.

import Foundation

/// An error surfaced through the boundary's last-error slot.
public struct RustError: Error {
    public let message: String

    /// Reads and clears the last-error slot. Returns a placeholder when the
    /// slot is empty, so a failed call always yields a printable error.
    public static func lastError() -> RustError {
        guard let cString = get_last_err_msg() else {
            return RustError(message: "unknown foreign error")
        }
        defer { ffi_string_free(cString) }
        return RustError(message: String(cString: cString))
    }
}

public enum FFIResult<T> {
    case success(T)
    case failure(RustError)

    public func get() throws -> T {
        switch self {
        case .success(let value):
            return value
        case .failure(let error):
            throw error
        }
    }
}

/// A Swift type with a foreign counterpart it can convert to and from.
public protocol NativeData {
    associatedtype ForeignType

    func toRust() -> ForeignType
    static func fromRust(_ foreignObject: ForeignType) -> Self
}

/// A boundary array triple. Materializing with toArray() releases the
/// boundary allocation exactly once.
public protocol FFIArray {
    associatedtype Value

    var ptr: UnsafeRawPointer? { get }
    var len: Int { get }
    var cap: Int { get }

    static func from(array: [Value]?) -> Self
    func toArray() -> [Value]
}

/// A by-value optional record. The value field is garbage when hasValue is
/// false and must not be read.
public protocol FFIOption {
    associatedtype Wrapped

    static func from(optional: Wrapped?) -> Self
}

`

// primitiveConformances covers the fixed-width scalars: they cross the
// boundary untouched, so toRust and fromRust are identities.
const primitiveConformances = `extension Bool: NativeData {
    public func toRust() -> Bool { self }
    public static func fromRust(_ foreignObject: Bool) -> Bool { foreignObject }
}

extension UInt8: NativeData {
    public func toRust() -> UInt8 { self }
    public static func fromRust(_ foreignObject: UInt8) -> UInt8 { foreignObject }
}

extension Int8: NativeData {
    public func toRust() -> Int8 { self }
    public static func fromRust(_ foreignObject: Int8) -> Int8 { foreignObject }
}

extension UInt16: NativeData {
    public func toRust() -> UInt16 { self }
    public static func fromRust(_ foreignObject: UInt16) -> UInt16 { foreignObject }
}

extension Int16: NativeData {
    public func toRust() -> Int16 { self }
    public static func fromRust(_ foreignObject: Int16) -> Int16 { foreignObject }
}

extension UInt32: NativeData {
    public func toRust() -> UInt32 { self }
    public static func fromRust(_ foreignObject: UInt32) -> UInt32 { foreignObject }
}

extension Int32: NativeData {
    public func toRust() -> Int32 { self }
    public static func fromRust(_ foreignObject: Int32) -> Int32 { foreignObject }
}

extension UInt64: NativeData {
    public func toRust() -> UInt64 { self }
    public static func fromRust(_ foreignObject: UInt64) -> UInt64 { foreignObject }
}

extension Int64: NativeData {
    public func toRust() -> Int64 { self }
    public static func fromRust(_ foreignObject: Int64) -> Int64 { foreignObject }
}

extension Float: NativeData {
    public func toRust() -> Float { self }
    public static func fromRust(_ foreignObject: Float) -> Float { foreignObject }
}

extension Double: NativeData {
    public func toRust() -> Double { self }
    public static func fromRust(_ foreignObject: Double) -> Double { foreignObject }
}

extension String: NativeData {
    public func toRust() -> UnsafeMutablePointer<CChar>? {
        strdup(self)
    }

    public static func fromRust(_ foreignObject: UnsafeMutablePointer<CChar>?) -> String {
        guard let cString = foreignObject else {
            return ""
        }
        defer { ffi_string_free(cString) }
        return String(cString: cString)
    }
}

`

// dateConformance rides the shared timestamp handle pair; it is emitted
// only when some declaration carries a timestamp field.
const dateConformance = `extension Date: NativeData {
    public func toRust() -> time_stamp_t {
        let interval = timeIntervalSince1970
        let secs = Int64(interval.rounded(.down))
        let nanos = Int32(((interval - interval.rounded(.down)) * 1_000_000_000).rounded())
        return time_stamp_init(secs, nanos)
    }

    public static func fromRust(_ foreignObject: time_stamp_t) -> Date {
        defer { time_stamp_free(foreignObject) }
        let secs = get_time_stamp_secs(foreignObject)
        let nanos = get_time_stamp_nanos(foreignObject)
        return Date(timeIntervalSince1970: Double(secs) + Double(nanos) / 1_000_000_000)
    }
}

`
